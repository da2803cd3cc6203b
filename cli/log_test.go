package cli

import (
	"testing"

	"github.com/ardnew/yapp/log"
)

func TestLogConfig_Scan(t *testing.T) {
	defer log.SetDefault(log.Default())

	tests := []struct {
		name string
		args []string
		want logConfig
	}{
		{
			name: "valued",
			args: []string{"eval", "--log-level", "DEBUG", "--log-format=json", "1"},
			want: logConfig{Level: "debug", Format: "json", Pretty: true},
		},
		{
			name: "booleans",
			args: []string{"--no-log-pretty", "--log-caller", "check"},
			want: logConfig{Caller: true},
		},
		{
			name: "assigned_booleans",
			args: []string{"--log-pretty=false", "--no-log-caller=false"},
			want: logConfig{Caller: true},
		},
		{
			name: "time",
			args: []string{"--log-time", "kitchen"},
			want: logConfig{TimeLayout: "kitchen", Pretty: true},
		},
		{
			name: "valued_without_value",
			args: []string{"--log-level", "--log-caller"},
			want: logConfig{Caller: true, Pretty: true},
		},
		{
			name: "after_terminator",
			args: []string{"eval", "--", "--log-level=error"},
			want: logConfig{Pretty: true},
		},
		{
			name: "other_flags",
			args: []string{"--level=warn", "--no-pretty"},
			want: logConfig{Pretty: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := logConfig{Pretty: true}
			got.scan(tt.args)

			if got != tt.want {
				t.Errorf("scan(%q) = %+v, want %+v", tt.args, got, tt.want)
			}
		})
	}
}
