package config

import "testing"

func TestLoadServerConfig(t *testing.T) {
	cases := []struct {
		name    string
		port    string
		want    string
		wantErr bool
	}{
		{"default", "", ":8080", false},
		{"bare port", "9000", ":9000", false},
		{"full addr", "127.0.0.1:9000", "127.0.0.1:9000", false},
		{"colon prefix", ":9001", ":9001", false},
		{"garbage", "90 00", "", true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv("PORT", tc.port)
			got, err := loadServerConfig()
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error for PORT=%q", tc.port)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.Addr != tc.want {
				t.Fatalf("addr: got %q, want %q", got.Addr, tc.want)
			}
		})
	}
}

func TestAIConfigEnabled(t *testing.T) {
	if (AIConfig{Model: "m", APIKey: "k"}).Enabled() != true {
		t.Error("api key + model should enable")
	}
	if (AIConfig{Model: "m", AccessKey: "a", SecretKey: "s"}).Enabled() != true {
		t.Error("ak/sk + model should enable")
	}
	if (AIConfig{APIKey: "k"}).Enabled() {
		t.Error("missing model should disable")
	}
	if (AIConfig{Model: "m", AccessKey: "a"}).Enabled() {
		t.Error("access key without secret should disable")
	}
}

func TestLoadSimulationConfigDefaultsAndOverrides(t *testing.T) {
	t.Setenv("SIM_TEMPERATURE", "")
	t.Setenv("SIM_MAX_TOKENS", "")
	t.Setenv("SIM_HISTORY_WINDOW", "")

	cfg, err := loadSimulationConfig()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Temperature != 0.8 || cfg.MaxTokens != 300 || cfg.HistoryWindow != 10 {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}

	t.Setenv("SIM_TEMPERATURE", "0.3")
	t.Setenv("SIM_MAX_TOKENS", "150")
	t.Setenv("SIM_HISTORY_WINDOW", "0")
	cfg, err = loadSimulationConfig()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Temperature != 0.3 || cfg.MaxTokens != 150 {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
	if cfg.HistoryWindow != 1 {
		t.Fatalf("history window should clamp to 1, got %d", cfg.HistoryWindow)
	}

	t.Setenv("SIM_MAX_TOKENS", "not-a-number")
	if _, err := loadSimulationConfig(); err == nil {
		t.Fatal("expected error for invalid SIM_MAX_TOKENS")
	}
}
