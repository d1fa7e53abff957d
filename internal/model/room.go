package model

// Theme holds the colors and artwork a room screen is painted with.
type Theme struct {
	Primary     string `yaml:"primary" json:"primary"`
	Secondary   string `yaml:"secondary" json:"secondary"`
	Third       string `yaml:"third,omitempty" json:"third,omitempty"`
	Text        string `yaml:"text" json:"text"`
	ModalButton string `yaml:"modal_button,omitempty" json:"modal_button,omitempty"`
	Logo        string `yaml:"logo,omitempty" json:"logo,omitempty"`
}

// Accent is the color used for the current event line.
func (t Theme) Accent() string {
	if t.Third != "" {
		return t.Third
	}
	return t.Primary
}

// Button is the color of the reservation submit button.
func (t Theme) Button() string {
	if t.ModalButton != "" {
		return t.ModalButton
	}
	return t.Primary
}

// Room is one entry of the room table.
type Room struct {
	ID         string `yaml:"id" json:"id"`
	Name       string `yaml:"name" json:"name"`
	Mailbox    string `yaml:"email" json:"email"`
	Tenant     string `yaml:"tenant" json:"tenant"`
	Campus     string `yaml:"campus" json:"campus"`
	Locale     string `yaml:"locale,omitempty" json:"locale,omitempty"`
	Theme      Theme  `yaml:"theme" json:"theme"`
	Background string `yaml:"background,omitempty" json:"background,omitempty"`
}
