package service

import "fmt"

// Reply texts mirror the bot's conversational voice. Formatting helpers keep
// the interpolation in one place so tests can assert against them.

const (
	replyOTPPrompt            = "Please enter the 6-digit OTP sent to your email."
	replyAlreadyAuthenticated = "You're already authenticated! How can I help you today?"
	replyStartAuth            = "Let's start authentication. Which cooperative do you belong to? (e.g., Fusion, CTLS, Octics)"
	replyNeedBothCredentials  = "I need both a valid email and employee number.\nExample: \"me@example.com FUS12345\""
	replyAuthFailed           = "Failed to authenticate. Please double-check your details and try again."
	replyOTPMismatch          = "The verification code you provided doesn't match. Please check your email and try again."
	replyAuthSuccess          = "Authentication successful! You're now logged in. How can I help you today?"
	replyAuthSuccessResume    = "You've been successfully authenticated! I'll now check your loan information."
	replyStorageFailure       = "Something went wrong while saving your progress. Please try again."
	replyReset                = "I've reset our conversation. Let's start fresh! If you need help with your cooperative account, just let me know."
	replySessionExpired       = "Your session has expired. Let's re-authenticate. Which cooperative do you belong to?"
)

func replyCooperativeRecognized(slug string) string {
	return fmt.Sprintf("Great! I've recognized your cooperative as %q. Please provide your email and employee number.", slug)
}

func replyCooperativeUnrecognized(input string) string {
	return fmt.Sprintf("I couldn't recognize %q as a valid cooperative. Please try again (e.g., Fusion, CTLS, Octics).", input)
}

func replyInvalidEmail(email string) string {
	return fmt.Sprintf("The email %q is not valid. Please provide a valid email.", email)
}

func replyOTPSent(email string) string {
	return fmt.Sprintf("An OTP has been sent to %s. Please enter the 6-digit code to continue.", email)
}
