package dto

type SocialUserData struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Picture   string `json:"picture"`
}

type SocialLoginRequest struct {
	Provider    string         `json:"provider"`
	AccessToken string         `json:"access_token"`
	UserData    SocialUserData `json:"user_data"`
}

type SocialLoginData struct {
	Token            string          `json:"token"`
	User             ProfileResponse `json:"user"`
	IsNewUser        bool            `json:"is_new_user"`
	Provider         string          `json:"provider"`
	ProfileCompleted bool            `json:"profile_completed"`
}

type SocialLoginResponse struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    SocialLoginData `json:"data"`
}

type LinkSocialRequest struct {
	Provider    string `json:"provider"`
	AccessToken string `json:"access_token"`
}

type UnlinkSocialRequest struct {
	Provider string `json:"provider"`
}

// AuthProfileData is a profile snapshot plus the account's sign-in methods.
type AuthProfileData struct {
	ProfileResponse
	SocialProviders []string `json:"social_providers"`
	HasPassword     bool     `json:"has_password"`
}

type AuthProfileResponse struct {
	Success bool            `json:"success"`
	Data    AuthProfileData `json:"data"`
}
