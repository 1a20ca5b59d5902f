package imap

import (
	"testing"

	"github.com/emersion/go-imap"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tarifario/internal/config"
)

func TestFormatAddresses(t *testing.T) {
	got := formatAddresses([]*imap.Address{
		{PersonalName: "ERP Tarifas", MailboxName: "erp", HostName: "example.com"},
		nil,
		{MailboxName: "admin", HostName: "example.com"},
	})
	assert.Equal(t, "ERP Tarifas <erp@example.com>, admin@example.com", got)
	assert.Empty(t, formatAddresses(nil))
}

func TestNewConnectorRequiresCredentials(t *testing.T) {
	_, err := NewConnector(config.Config{IMAPHost: "imap.example.com", IMAPUser: "erp"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "IMAP_PASSWORD")

	c, err := NewConnector(config.Config{IMAPHost: "imap.example.com", IMAPUser: "erp", IMAPPassword: "x", IMAPPort: 993, IMAPSecure: true})
	require.NoError(t, err)
	assert.Equal(t, 993, c.port)
}
