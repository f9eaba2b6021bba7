// Package validation provides input validation for configuration structs and
// request payloads.
//
// Struct tag validation uses go-playground/validator and returns an
// *errors.AppError with per-field details:
//
//	type Config struct {
//	    BackendURL string `validate:"required,url"`
//	    Role       string `validate:"required,role"`
//	}
//	err := validation.Validate(cfg)
//
// Programmatic validation collects errors fluently:
//
//	v := validation.New()
//	v.Required("email", req.Email).OneOf("role", req.Role, roles)
//	if err := v.Validate(); err != nil { ... }
package validation
