package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRewriteShorthand(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want []string
	}{
		{
			name: "no args untouched",
			args: []string{},
			want: []string{},
		},
		{
			name: "built-in command untouched",
			args: []string{"list", "--plain"},
			want: []string{"list", "--plain"},
		},
		{
			name: "flags untouched",
			args: []string{"--version"},
			want: []string{"--version"},
		},
		{
			name: "bare task name becomes run",
			args: []string{"test"},
			want: []string{"run", "test"},
		},
		{
			name: "task args carried along",
			args: []string{"test", "filter=-k smoke"},
			want: []string{"run", "test", "filter=-k smoke"},
		},
		{
			name: "run itself untouched",
			args: []string{"run", "test"},
			want: []string{"run", "test"},
		},
		{
			name: "help untouched",
			args: []string{"help", "run"},
			want: []string{"help", "run"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, rewriteShorthand(tt.args))
		})
	}
}
