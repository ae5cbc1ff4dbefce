package main

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"defaults pass", func(c *Config) {}, ""},
		{"missing room", func(c *Config) { c.room = "" }, "room code is required"},
		{"room too short", func(c *Config) { c.room = "abc" }, "invalid room code"},
		{"room too long", func(c *Config) { c.room = "ABCDEFGHIJKLM" }, "invalid room code"},
		{"room with symbols", func(c *Config) { c.room = "ab-12" }, "invalid room code"},
		{"bad mode", func(c *Config) { c.mode = "hardcore" }, "invalid mode"},
		{"bad chat limit", func(c *Config) { c.chatLimit = 0 }, "invalid chat limit"},
		{"negative results delay", func(c *Config) { c.resultsDelay = -1 }, "invalid results delay"},
		{"bad port ignored without profile", func(c *Config) { c.port = 0 }, ""},
		{"bad port rejected with profile", func(c *Config) { c.profile = true; c.port = 0 }, "invalid port"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := testConfig()
			tc.mutate(cfg)

			err := cfg.validate()
			if tc.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tc.wantErr)
			}
		})
	}
}

func TestRoomCodeNormalization(t *testing.T) {
	cfg := testConfig()
	cfg.room = "  abc12345 "
	assert.Equal(t, "ABC12345", cfg.roomCode())
}

func TestInviteLink(t *testing.T) {
	t.Run("derived from ws url", func(t *testing.T) {
		cfg := testConfig()
		cfg.server = "ws://game.example.com:5000/ws"
		assert.Equal(t, "http://game.example.com:5000/room/ABC12345", cfg.invite())
	})

	t.Run("wss maps to https", func(t *testing.T) {
		cfg := testConfig()
		cfg.server = "wss://game.example.com/ws"
		assert.Equal(t, "https://game.example.com/room/ABC12345", cfg.invite())
	})

	t.Run("explicit invite url wins", func(t *testing.T) {
		cfg := testConfig()
		cfg.inviteURL = "https://play.example.com/"
		assert.Equal(t, "https://play.example.com/room/ABC12345", cfg.invite())
	})
}

func TestIdentityDefaults(t *testing.T) {
	t.Run("generated names are adjective noun pairs", func(t *testing.T) {
		for i := 0; i < 20; i++ {
			name := generateDisplayName()
			parts := strings.SplitN(name, " ", 2)
			require.Len(t, parts, 2)
			assert.Contains(t, displayAdjectives, parts[0])
			assert.Contains(t, displayNouns, parts[1])
		}
	})

	t.Run("avatar colors come from the palette", func(t *testing.T) {
		for i := 0; i < 20; i++ {
			assert.Contains(t, avatarColors, randomAvatarColor())
		}
	})
}

func TestCommandFlags(t *testing.T) {
	cfg := &Config{}
	cmd := newCmd(cfg)

	require.NoError(t, cmd.ParseFlags([]string{
		"--room", "abc12345",
		"--mode", "challenge",
		"--chat-limit", "10",
	}))

	assert.Equal(t, "abc12345", cfg.room)
	assert.Equal(t, "challenge", cfg.mode)
	assert.Equal(t, 10, cfg.chatLimit)
	assert.Equal(t, "ws://localhost:5000/ws", cfg.server)
	assert.NoError(t, cfg.validate())
}
