package main

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
)

// Secrets partition keys.
const (
	secretKeyEtherscan = "etherscan_api_key"
	secretKeyRPCURL    = "rpc_url"
)

// Temporary form values. Package-level to avoid pointer-to-copy issues
// with huh forms stored on the model.
var (
	secretsFormAPIKey string
	secretsFormRPCURL string
)

// newSecretsForm builds the credentials form, pre-filled with the
// currently resolved values.
func newSecretsForm(apiKey, rpcURL string) *huh.Form {
	secretsFormAPIKey = apiKey
	secretsFormRPCURL = rpcURL

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Etherscan API Key").
				Prompt("> ").
				Value(&secretsFormAPIKey).
				Validate(requiredField("an API key")),
			huh.NewInput().
				Title("RPC URL").
				Prompt("> ").
				Placeholder("http://localhost:8545").
				Value(&secretsFormRPCURL).
				Validate(requiredField("an RPC URL")),
		),
	).WithTheme(huh.ThemeCatppuccin()).WithShowHelp(true)
}

func requiredField(what string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return &validationError{what: what}
		}
		return nil
	}
}

type validationError struct {
	what string
}

func (e *validationError) Error() string { return "enter " + e.what }

// openSecretsModal shows the credentials form, remembering where focus
// came from.
func (m *model) openSecretsModal() {
	m.form = newSecretsForm(m.etherscanKey, m.rpcURL)
	m.form.Init()
	m.showModal = true
	m.navState.FocusModal()
}

// updateSecretsForm routes a message into the form and handles
// completion. Esc closes without saving.
func (m *model) updateSecretsForm(msg tea.Msg) tea.Cmd {
	if key, ok := msg.(tea.KeyMsg); ok && key.String() == "esc" {
		return m.dispatch(actionCloseModal{})
	}
	if m.form == nil {
		return m.dispatch(actionCloseModal{})
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateCompleted:
		return m.saveSecrets(strings.TrimSpace(secretsFormAPIKey), strings.TrimSpace(secretsFormRPCURL), cmd)
	case huh.StateAborted:
		return tea.Batch(cmd, m.dispatch(actionCloseModal{}))
	}
	return cmd
}

// saveSecrets persists both values before updating in-memory state, so
// a storage failure leaves the previous credentials in effect.
func (m *model) saveSecrets(apiKey, rpcURL string, cmd tea.Cmd) tea.Cmd {
	if err := m.secrets.Put(secretKeyEtherscan, apiKey); err != nil {
		m.logger.Error("store secret", "key", secretKeyEtherscan, "err", err)
		m.setStatus("Failed to save secrets: " + err.Error())
		m.form = newSecretsForm(apiKey, rpcURL)
		m.form.Init()
		return cmd
	}
	if err := m.secrets.Put(secretKeyRPCURL, rpcURL); err != nil {
		m.logger.Error("store secret", "key", secretKeyRPCURL, "err", err)
		m.setStatus("Failed to save secrets: " + err.Error())
		m.form = newSecretsForm(apiKey, rpcURL)
		m.form.Init()
		return cmd
	}

	m.etherscanKey = apiKey
	m.rpcURL = rpcURL
	return tea.Batch(cmd, m.dispatch(actionSecretsSaved{}))
}
