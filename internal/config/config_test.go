package config

import "testing"

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{
			name: "all credentials present",
			cfg: Config{
				Keys: APIKeys{Telegram: "tg-token", OpenAI: "oa-key"},
				Ai:   AIConfig{LLMProvider: "openai"},
			},
			wantErr: false,
		},
		{
			name: "missing telegram token",
			cfg: Config{
				Keys: APIKeys{OpenAI: "oa-key"},
				Ai:   AIConfig{LLMProvider: "openai"},
			},
			wantErr: true,
		},
		{
			name: "missing openai key with openai provider",
			cfg: Config{
				Keys: APIKeys{Telegram: "tg-token"},
				Ai:   AIConfig{LLMProvider: "openai"},
			},
			wantErr: true,
		},
		{
			name: "ollama provider needs no openai key",
			cfg: Config{
				Keys: APIKeys{Telegram: "tg-token"},
				Ai:   AIConfig{LLMProvider: "ollama"},
			},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
