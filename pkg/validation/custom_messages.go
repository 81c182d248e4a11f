package validation

// CustomMessage returns the field specific messages, keyed by validation tag
func CustomMessage(field string) map[string]string {
	var customValidationMessages = map[string]map[string]string{
		"email": {
			"required": "email must not be blank",
			"email":    "email is not a valid email address",
		},
		"password": {
			"required": "password must not be blank",
			"min":      "password must be at least 10 characters long",
			"max":      "password must be at most 50 characters long",
		},
		"new_password": {
			"min": "new_password must be at least 10 characters long",
			"max": "new_password must be at most 50 characters long",
		},
		"price": {
			"required": "price must not be blank",
		},
		"roles": {
			"oneof": "roles may only contain ROLE_USER, ROLE_ADMIN or ROLE_SUPER_ADMIN",
		},
	}
	return customValidationMessages[field]
}
