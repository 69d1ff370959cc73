package protocol

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
)

// CreateRoomRequest is the body of POST /rooms.
type CreateRoomRequest struct {
	Name         string `json:"name" validate:"required,max=100"`
	MaxPlayers   int    `json:"maxPlayers" validate:"required,min=1,max=32"`
	GameTime     int    `json:"gameTime" validate:"required,min=10,max=3600"`
	CanvasWidth  int    `json:"canvasWidth" validate:"required,min=1,max=4096"`
	CanvasHeight int    `json:"canvasHeight" validate:"required,min=1,max=4096"`
	IsPrivate    bool   `json:"isPrivate"`
	Password     string `json:"password,omitempty" validate:"omitempty,min=1,max=100"`
}

// JoinRoomRequest is the body of POST /rooms/{id}/join.
type JoinRoomRequest struct {
	Password string `json:"password,omitempty" validate:"omitempty,max=100"`
	Username string `json:"username,omitempty" validate:"omitempty,max=50"`
}

// Validator: validation and sanitization of client-supplied payloads
type Validator struct {
	validate  *validator.Validate
	sanitizer *bluemonday.Policy
}

func NewValidator() *Validator {
	// removes all HTML/scripts
	policy := bluemonday.StrictPolicy()

	return &Validator{
		validate:  validator.New(validator.WithRequiredStructEnabled()),
		sanitizer: policy,
	}
}

// ValidateCreateRoom: checks a room spec and sanitizes its name
func (v *Validator) ValidateCreateRoom(req *CreateRoomRequest) error {
	if err := v.validate.Struct(req); err != nil {
		return formatValidationError(err)
	}
	req.Name = v.sanitizer.Sanitize(req.Name)
	if req.Name == "" {
		return fmt.Errorf("'name' is required")
	}
	return nil
}

// ValidateJoinRoom: checks a join request and sanitizes the username
func (v *Validator) ValidateJoinRoom(req *JoinRoomRequest) error {
	if err := v.validate.Struct(req); err != nil {
		return formatValidationError(err)
	}
	req.Username = v.sanitizer.Sanitize(req.Username)
	return nil
}

// ValidateDraw: checks paint coordinates and brush parameters
func (v *Validator) ValidateDraw(data *DrawData) error {
	if err := v.validate.Struct(data); err != nil {
		return formatValidationError(err)
	}
	data.Color = v.sanitizer.Sanitize(data.Color)
	return nil
}

// Sanitize: strips HTML/scripts from a user-supplied string
func (v *Validator) Sanitize(s string) string {
	return v.sanitizer.Sanitize(s)
}

// formatValidationError converts validator errors to a user-friendly message.
// Returns the first error only; clients fix one field at a time anyway.
func formatValidationError(err error) error {
	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok || len(validationErrors) == 0 {
		return fmt.Errorf("validation failed: %w", err)
	}

	fieldErr := validationErrors[0]
	switch fieldErr.Tag() {
	case "required":
		return fmt.Errorf("'%s' is required", fieldErr.Field())
	case "min", "max":
		return fmt.Errorf("'%s' value out of allowed range", fieldErr.Field())
	default:
		return fmt.Errorf("'%s' is invalid", fieldErr.Field())
	}
}
