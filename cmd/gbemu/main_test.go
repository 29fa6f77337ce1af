package main

import "testing"

func TestROMArg(t *testing.T) {
	tests := []struct {
		name    string
		flagROM string
		args    []string
		want    string
		wantErr bool
	}{
		{name: "positional", args: []string{"a.gb"}, want: "a.gb"},
		{name: "flag", flagROM: "b.gb", want: "b.gb"},
		{name: "none", wantErr: true},
		{name: "two positional", args: []string{"a.gb", "b.gb"}, wantErr: true},
		{name: "flag and positional", flagROM: "b.gb", args: []string{"a.gb"}, wantErr: true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := romArg(tc.flagROM, tc.args)
			if (err != nil) != tc.wantErr {
				t.Fatalf("err got %v wantErr %v", err, tc.wantErr)
			}
			if got != tc.want {
				t.Fatalf("rom got %q want %q", got, tc.want)
			}
		})
	}
}
