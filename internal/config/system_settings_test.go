package config

import (
	"testing"

	"github.com/caarlos0/env/v11"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_Defaults(t *testing.T) {
	s, err := Parse(env.Options{Environment: map[string]string{}})
	require.NoError(t, err)

	assert.Equal(t, DATABASE_TYPE_SQLLITE, s.DatabaseType)
	assert.Equal(t, "./catalogflow.db", s.DatabaseSqlLiteFile)
	assert.Equal(t, "8080", s.ServerWebPort)
	assert.Equal(t, "INFO", s.LogLevel)
	assert.False(t, s.GuardParallel)
	assert.True(t, s.EnforceStateAccess)
	assert.True(t, s.MetricsEnabled)
	assert.False(t, s.SeedOnStart)
}

func TestParse_Overrides(t *testing.T) {
	s, err := Parse(env.Options{Environment: map[string]string{
		"CFLOW_DATABASE_TYPE":        "postgres",
		"CFLOW_DATABASE_URL":         "postgres://u:p@localhost/cflow?sslmode=disable",
		"CFLOW_GUARD_PARALLEL":       "true",
		"CFLOW_ENFORCE_STATE_ACCESS": "false",
	}})
	require.NoError(t, err)

	assert.Equal(t, DATABASE_TYPE_POSTGRES, s.DatabaseType)
	assert.True(t, s.GuardParallel)
	assert.False(t, s.EnforceStateAccess)
}

func TestParse_Invalid(t *testing.T) {
	cases := map[string]map[string]string{
		"unknown type":     {"CFLOW_DATABASE_TYPE": "ORACLE"},
		"postgres no url":  {"CFLOW_DATABASE_TYPE": "POSTGRES"},
		"mysql bad scheme": {"CFLOW_DATABASE_TYPE": "MYSQL", "CFLOW_DATABASE_URL": "tcp://localhost/db?parseTime=true"},
		"mysql no parse":   {"CFLOW_DATABASE_TYPE": "MYSQL", "CFLOW_DATABASE_URL": "mysql://u:p@tcp(localhost:3306)/db"},
		"bad bool":         {"CFLOW_GUARD_PARALLEL": "maybe"},
	}
	for name, environment := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse(env.Options{Environment: environment})
			assert.Error(t, err)
		})
	}
}
