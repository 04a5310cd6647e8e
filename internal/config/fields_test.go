package config

import "testing"

func TestLookupField_KnownKey(t *testing.T) {
	f, ok := LookupField("service.transport")
	if !ok {
		t.Fatal("expected service.transport to be in catalog")
	}
	if f.Type != FieldEnum {
		t.Errorf("expected FieldEnum, got %s", f.Type)
	}
	if f.Env != EnvTransport {
		t.Errorf("expected %s, got %q", EnvTransport, f.Env)
	}
	for _, opt := range f.Options {
		if opt.Description == "" {
			t.Errorf("transport option %q has no description", opt.Value)
		}
	}
}

func TestLookupField_UnknownKey(t *testing.T) {
	if _, ok := LookupField("nonexistent.field"); ok {
		t.Error("expected unknown key to return false")
	}
}

func TestLookupField_ReturnsCopy(t *testing.T) {
	f, _ := LookupField("output.color")
	f.Options[0].Value = "mutated"
	again, _ := LookupField("output.color")
	if again.Options[0].Value != ColorAuto {
		t.Fatalf("registry was mutated: %q", again.Options[0].Value)
	}
}

func TestFieldOptionValues(t *testing.T) {
	got := FieldOptionValues("service.transport")
	want := []string{TransportCommand, TransportHTTP, TransportLongPoll}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
	if FieldOptionValues("system.sysroot") != nil {
		t.Fatal("path fields have no options")
	}
}

func TestEveryEnvFieldIsSettable(t *testing.T) {
	for _, f := range Fields() {
		if f.Env == "" {
			continue
		}
		cfg := Default()
		if err := setField(&cfg, f.Key, "x"); err != nil {
			t.Errorf("%s: %v", f.Key, err)
		}
	}
}
