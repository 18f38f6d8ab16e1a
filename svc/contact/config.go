package contact

import (
	"fmt"
	"time"

	"github.com/dmitrymomot/contactguard/pkg/ratelimit"
	"github.com/dmitrymomot/contactguard/pkg/validator"
)

type Config struct {
	// Recipient receives every accepted submission.
	Recipient       string        `env:"CONTACT_RECIPIENT,required"`
	Subject         string        `env:"CONTACT_SUBJECT" envDefault:"New Contact Form Message"`
	DispatchTimeout time.Duration `env:"CONTACT_DISPATCH_TIMEOUT" envDefault:"10s"`
	Policy          ratelimit.Policy
}

func (c Config) Validate() error {
	if !validator.IsEmail(c.Recipient) {
		return fmt.Errorf("contact: recipient %q is not a valid email address", c.Recipient)
	}
	if c.DispatchTimeout <= 0 {
		return fmt.Errorf("contact: dispatch timeout must be positive")
	}
	return c.Policy.Validate()
}
