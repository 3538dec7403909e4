package dto

// Step1Req はステップ1（認証情報）のリクエストボディです。
type Step1Req struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// Step2Req はステップ2（プロフィールと規約同意）のリクエストボディです。
type Step2Req struct {
	SessionID    string `json:"sessionId"`
	FirstName    string `json:"firstName"`
	LastName     string `json:"lastName"`
	AgreeToTerms bool   `json:"agreeToTerms"`
}

// Step3Req commits a registration. Either SessionID or the full credential set is used.
type Step3Req struct {
	SessionID string `json:"sessionId"`
	Email     string `json:"email"`
	Username  string `json:"username"`
	Password  string `json:"password"`
}

// StepResp tells the client which step comes next.
type StepResp struct {
	SessionID string `json:"sessionId"`
	NextStep  int    `json:"nextStep"`
}

// CommitResp is the body of a successful step 3.
type CommitResp struct {
	User UserResponse `json:"user"`
}
