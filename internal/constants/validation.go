package constants

// Field Length Limits, mirrored by the binding tags of the request DTOs
const (
	MinNameLength        = 5
	MaxNameLength        = 30
	MinDescriptionLength = 20
	MinPhoneLength       = 10
	MinSerialLength      = 10
)
