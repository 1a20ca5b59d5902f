package listener

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"tarifario/internal"
	"tarifario/internal/config"
	"tarifario/internal/connectors"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeConnector struct {
	messages []internal.MailMessage
	err      error
}

func (f fakeConnector) FetchInbox(context.Context, string, int) ([]internal.MailMessage, error) {
	return f.messages, f.err
}

type memLedger struct {
	mu   sync.Mutex
	rows []internal.InboundMail
}

func (l *memLedger) UpsertInboundMail(_ context.Context, provider, messageID, subject, sender, receivedAt, hash, rawRef, status string) (internal.InboundMail, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	row := internal.InboundMail{ID: len(l.rows) + 1, Provider: provider, MessageID: messageID, Subject: subject, Hash: hash, RawRef: rawRef, Status: status}
	l.rows = append(l.rows, row)
	return row, nil
}

type fakeProcessor struct {
	mu        sync.Mutex
	calls     int
	providers []string
	onCall    func()
}

func (p *fakeProcessor) ProcessPending(_ context.Context, limit int, provider string) (int, int, error) {
	p.mu.Lock()
	p.calls++
	p.providers = append(p.providers, provider)
	p.mu.Unlock()
	if p.onCall != nil {
		p.onCall()
	}
	return 1, 3, nil
}

func testConfig(t *testing.T) config.Config {
	return config.Config{
		RawMailDir:               t.TempDir(),
		MailListenerProvider:     " IMAP ",
		MailListenerLabel:        "INBOX",
		MailListenerIntervalSec:  3600,
		MailListenerFetchMax:     5,
		MailListenerProcessBatch: 5,
	}
}

func TestRunOnceFetchesThenProcesses(t *testing.T) {
	ledger := &memLedger{}
	proc := &fakeProcessor{}
	conn := fakeConnector{messages: []internal.MailMessage{
		{Provider: "imap", MessageID: "<1@erp>", Raw: []byte("Subject: a\r\n\r\nx")},
		{Provider: "imap", MessageID: "<2@erp>", Raw: []byte("Subject: b\r\n\r\ny")},
	}}

	svc := NewService(ledger, proc, testConfig(t), nil).
		WithConnectorFactory(func(context.Context, string) (connectors.MailConnector, error) { return conn, nil })

	res, err := svc.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, CycleResult{Fetched: 2, Stored: 2, Processed: 1, Rows: 3}, res)
	assert.Len(t, ledger.rows, 2)
	assert.Equal(t, []string{"imap"}, proc.providers)
}

func TestRunOnceStopsOnFetchError(t *testing.T) {
	proc := &fakeProcessor{}
	svc := NewService(&memLedger{}, proc, testConfig(t), nil).
		WithConnectorFactory(func(context.Context, string) (connectors.MailConnector, error) {
			return fakeConnector{err: errors.New("login failed")}, nil
		})

	_, err := svc.RunOnce(context.Background())
	require.Error(t, err)
	assert.Zero(t, proc.calls)
}

func TestRunOnceRejectsUnknownProvider(t *testing.T) {
	cfg := testConfig(t)
	cfg.MailListenerProvider = "pop3"

	_, err := NewService(&memLedger{}, &fakeProcessor{}, cfg, nil).RunOnce(context.Background())
	assert.Error(t, err)
}

func TestRunReturnsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	proc := &fakeProcessor{onCall: cancel}
	svc := NewService(&memLedger{}, proc, testConfig(t), nil).
		WithConnectorFactory(func(context.Context, string) (connectors.MailConnector, error) { return fakeConnector{}, nil })

	done := make(chan error, 1)
	go func() { done <- svc.Run(ctx) }()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("listener did not stop")
	}
	assert.Equal(t, 1, proc.calls)
}

func TestRunKeepsGoingAfterCycleError(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg := testConfig(t)
	cfg.MailListenerIntervalSec = 0
	attempts := 0
	svc := NewService(&memLedger{}, &fakeProcessor{}, cfg, nil).
		WithConnectorFactory(func(context.Context, string) (connectors.MailConnector, error) {
			attempts++
			cancel()
			return nil, errors.New("unreachable")
		})

	require.NoError(t, svc.Run(ctx))
	assert.Equal(t, 1, attempts)
}
