package handler

// Request payloads. Validation rules live in the struct tags; field-level
// failures are translated and returned to the client.

type InitiateSignupRequest struct {
	Email       string  `json:"email"                 validate:"required,email"`
	Username    string  `json:"username"              validate:"required,min=3,max=20"`
	Password    string  `json:"password"              validate:"required,min=8"`
	PhoneNumber *string `json:"phoneNumber,omitempty" validate:"omitempty,max=20"`
	Gender      *string `json:"gender,omitempty"      validate:"omitempty,max=20"`
}

type VerifySignupRequest struct {
	Email   string `json:"email"   validate:"required,email"`
	OTPCode string `json:"otpCode" validate:"required,len=6,numeric"`
}

type SignInRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type ResetPasswordRequest struct {
	Code        string `json:"code"        validate:"required,len=6,numeric"`
	NewPassword string `json:"newPassword" validate:"required,min=8"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required,min=8"`
	NewPassword     string `json:"newPassword"     validate:"required,min=8"`
}
