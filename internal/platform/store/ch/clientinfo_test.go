package ch

import "testing"

func TestBuildClientInfo(t *testing.T) {
	info := BuildClientInfo(" run ", "")
	if len(info.Products) != 5 {
		t.Fatalf("products = %d, want 5", len(info.Products))
	}
	if info.Products[0].Name != "curator" || info.Products[0].Version != "dev" {
		t.Fatalf("first product = %+v", info.Products[0])
	}
	if info.Products[1].Version != "run" {
		t.Fatalf("role not trimmed: %q", info.Products[1].Version)
	}
}
