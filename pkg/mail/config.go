package mail

// Config holds outbound email settings. The Postmark tokens are optional so
// development environments can run on the file-based sender instead.
type Config struct {
	PostmarkServerToken  string `env:"POSTMARK_SERVER_TOKEN"`
	PostmarkAccountToken string `env:"POSTMARK_ACCOUNT_TOKEN"`
	SenderEmail          string `env:"SENDER_EMAIL,required"`
	SupportEmail         string `env:"SUPPORT_EMAIL"`
	FrontendURL          string `env:"FRONTEND_URL,required"`
	DevDir               string `env:"MAIL_DEV_DIR" envDefault:"tmp/mail"`
}
