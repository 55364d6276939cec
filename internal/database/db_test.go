package database

import "testing"

func TestConnString_QuotesValues(t *testing.T) {
	tests := []struct {
		name     string
		password string
		want     string
	}{
		{
			name:     "plain",
			password: "secret",
			want:     `host='localhost' port=5432 dbname='shop' user='app' password='secret' sslmode='disable'`,
		},
		{
			name:     "spaces",
			password: "two words",
			want:     `host='localhost' port=5432 dbname='shop' user='app' password='two words' sslmode='disable'`,
		},
		{
			name:     "quote and backslash",
			password: `it's\x`,
			want:     `host='localhost' port=5432 dbname='shop' user='app' password='it\'s\\x' sslmode='disable'`,
		},
		{
			name:     "empty",
			password: "",
			want:     `host='localhost' port=5432 dbname='shop' user='app' password='' sslmode='disable'`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := connString("localhost", 5432, "shop", "app", tt.password, "disable")
			if got != tt.want {
				t.Errorf("connString() = %q, want %q", got, tt.want)
			}
		})
	}
}
