package middleware

import (
	stderrors "errors"
	"net/http"

	"github.com/ecoles/schoolmanager/internal/permissions"
	"github.com/ecoles/schoolmanager/pkg/errors"
)

var (
	errAmbiguousPermission = errors.New("AMBIGUOUS_PERMISSION", "Codename matches several resources; specify the resource", http.StatusBadRequest)
	errInvalidDefinition   = errors.New("INVALID_DEFINITION", "Invalid permission or role definition", http.StatusBadRequest)
)

// TranslateError maps authorization engine errors onto API errors. Anything unknown becomes
// an internal error.
func TranslateError(err error) *errors.AppError {
	if err == nil {
		return nil
	}

	var appErr *errors.AppError
	if stderrors.As(err, &appErr) {
		return appErr
	}

	var denied *permissions.PermissionDeniedError
	switch {
	case stderrors.Is(err, permissions.ErrAuthenticationRequired):
		return errors.ErrUnauthorized
	case stderrors.Is(err, permissions.ErrProfileNotFound):
		return errors.ErrProfileNotFound
	case stderrors.As(err, &denied):
		return errors.ErrForbidden.
			WithMessage("Missing permission " + denied.Codename).
			WithDetails(map[string]any{"codename": denied.Codename, "resource": denied.Resource})
	case stderrors.Is(err, permissions.ErrAmbiguousPermission):
		return errAmbiguousPermission
	case stderrors.Is(err, permissions.ErrInvalidDefinition):
		return errInvalidDefinition.WithMessage(err.Error())
	case stderrors.Is(err, permissions.ErrNotFound):
		return errors.ErrNotFound.WithMessage(err.Error())
	default:
		return errors.ErrInternalServer.WithInternal(err)
	}
}
