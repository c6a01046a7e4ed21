package provider

import "testing"

func TestExtractText(t *testing.T) {
	tests := []struct {
		name string
		body string
		path string
		want string
	}{
		{
			name: "chat completion",
			body: `{"choices":[{"message":{"role":"assistant","content":"hi"}}]}`,
			path: DefaultResponsePath,
			want: "hi",
		},
		{
			name: "custom path",
			body: `{"result":{"text":"custom"}}`,
			path: "result.text",
			want: "custom",
		},
		{
			name: "empty string is a valid answer",
			body: `{"choices":[{"message":{"content":""}}]}`,
			path: DefaultResponsePath,
			want: "",
		},
		{
			name: "path misses falls back to compact body",
			body: "{\"zzz\": 1,\n \"aaa\": [true, null]}",
			path: DefaultResponsePath,
			want: `{"zzz":1,"aaa":[true,null]}`,
		},
		{
			name: "non-string value falls back to body",
			body: `{"choices":[{"message":{"content":null}}]}`,
			path: DefaultResponsePath,
			want: `{"choices":[{"message":{"content":null}}]}`,
		},
		{
			name: "non-json body returned as is",
			body: "plain answer",
			path: DefaultResponsePath,
			want: "plain answer",
		},
		{
			name: "empty path falls back to body",
			body: `{"a":"b"}`,
			path: "",
			want: `{"a":"b"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractText([]byte(tt.body), tt.path); got != tt.want {
				t.Errorf("ExtractText() = %q, want %q", got, tt.want)
			}
		})
	}
}
