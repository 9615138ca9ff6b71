package auth

// Client-facing messages of the account operations.
const (
	msgAllFieldsRequired   = "All fields are required."
	msgInvalidEmail        = "Please provide a valid email address."
	msgUserExists          = "User with this email or username already exists."
	msgAvatarRequired      = "Avatar file is required."
	msgCoverRequired       = "Cover Image file is required."
	msgUploadFailed        = "Failed to upload the file, please try again"
	msgRegisterFailed      = "Something went wrong while registering the user"
	msgLoginIdentity       = "username or email is required to login"
	msgInvalidCredentials  = "invalid credentials"
	msgPasswordsRequired   = "Please provide the old password and new password"
	msgIncorrectPassword   = "Incorrect password provided"
	msgDetailsRequired     = "Please provide email or fullName to update the details."
	msgEmailTaken          = "Email is already in use."
	msgUnsupportedMedia    = "Only jpeg, png, gif and webp images are supported."
	msgMediaTooLarge       = "The file exceeds the maximum upload size."
	msgUnauthorizedRequest = "Invalid access token"
)
