package domain

// Settings are user-tunable notification sinks. Empty values mean the
// env-configured default (if any) applies.
type Settings struct {
	SlackWebhookURL    string `json:"slackWebhookUrl"`
	ExternalWebhookURL string `json:"externalWebhookUrl"`
}

// SettingsPatch is a partial update; nil fields are left unchanged.
type SettingsPatch struct {
	SlackWebhookURL    *string `json:"slackWebhookUrl"`
	ExternalWebhookURL *string `json:"externalWebhookUrl"`
}

// Merge applies the patch and returns the updated settings.
func (s Settings) Merge(p SettingsPatch) Settings {
	if p.SlackWebhookURL != nil {
		s.SlackWebhookURL = *p.SlackWebhookURL
	}
	if p.ExternalWebhookURL != nil {
		s.ExternalWebhookURL = *p.ExternalWebhookURL
	}
	return s
}
