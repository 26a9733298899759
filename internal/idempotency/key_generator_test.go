package idempotency

import "testing"

func TestGenerateKeyIsDeterministic(t *testing.T) {
	a := GenerateKey("/webhook", `{"op":"event.create"}`)
	b := GenerateKey("/webhook", `{"op":"event.create"}`)
	if a != b {
		t.Errorf("same parts produced different keys: %q vs %q", a, b)
	}
}

func TestGenerateKeySeparatesParts(t *testing.T) {
	if GenerateKey("ab", "c") == GenerateKey("a", "bc") {
		t.Error("part boundaries do not affect the key")
	}
	if GenerateKey("/webhook", "x") == GenerateKey("/webhook", "y") {
		t.Error("payload does not affect the key")
	}
}
