package application

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/iota-uz/payroll-bot/pkg/configuration"
)

type greeter struct{ name string }

type failingModule struct{}

func (failingModule) Name() string { return "broken" }

func (failingModule) Register(Application) error { return errBroken }

var errBroken = configurationError("boom")

type configurationError string

func (e configurationError) Error() string { return string(e) }

func TestServiceRegistry(t *testing.T) {
	app := New(&ApplicationOptions{Config: configuration.Configuration{Locale: "ru"}})
	app.RegisterServices(&greeter{name: "payroll"})

	svc := app.Service(greeter{}).(*greeter)
	require.Equal(t, "payroll", svc.name)
	require.Panics(t, func() { app.Service(struct{}{}) })
}

func TestLoadModules_WrapsError(t *testing.T) {
	app := New(&ApplicationOptions{})
	err := LoadModules(app, failingModule{})
	require.ErrorIs(t, err, errBroken)
	require.Contains(t, err.Error(), "module broken")
}
