package handlers

import (
	"github.com/gin-gonic/gin"

	"huddle_backend/internal/validator"
	"huddle_backend/pkg/apperrors"
)

// bindAndValidate decodes the JSON body into obj and runs struct
// validation, writing the error response itself on failure.
func bindAndValidate(c *gin.Context, v *validator.Validator, obj interface{}) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		apperrors.HandleError(c, apperrors.NewBadRequestError("Invalid request body"))
		return false
	}

	if err := v.Validate(obj); err != nil {
		if vErr, ok := err.(*validator.ValidationError); ok {
			apperrors.HandleError(c, apperrors.ValidationError(vErr.Errors))
		} else {
			apperrors.HandleError(c, err)
		}
		return false
	}
	return true
}
