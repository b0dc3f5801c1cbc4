package attendanceerrors

import (
	"net/http"

	"geopunch/internal/shared/apperror"
)

var (
	ErrAlreadyCheckedIn = apperror.New(
		apperror.CodeInvalidState,
		"already checked in",
		http.StatusConflict,
	)
	ErrNotCheckedIn = apperror.New(
		apperror.CodeInvalidState,
		"not checked in",
		http.StatusConflict,
	)
	ErrPunchNotFound = apperror.New(
		apperror.CodeNotFound,
		"Punch not found",
		http.StatusNotFound,
	)
	ErrDuplicatePunch = apperror.New(
		apperror.CodeConflict,
		"Punch already recorded",
		http.StatusConflict,
	)
	ErrInvalidEmployeeID = apperror.New(
		apperror.CodeInvalidInput,
		"Invalid employee ID",
		http.StatusBadRequest,
	)
	ErrInvalidCompanyID = apperror.New(
		apperror.CodeInvalidInput,
		"Invalid company ID",
		http.StatusBadRequest,
	)
)
