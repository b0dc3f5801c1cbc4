package geo

// DefaultGeofenceRadiusM applies when a company has not configured its
// own geofence radius.
const DefaultGeofenceRadiusM = 300.0

// Violates reports whether a distance falls outside the geofence.
// Punches that violate the fence require a justification before they
// may be submitted.
func Violates(distanceM, radiusM float64) bool {
	if radiusM <= 0 {
		radiusM = DefaultGeofenceRadiusM
	}
	return distanceM > radiusM
}
