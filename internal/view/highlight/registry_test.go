package highlight

import "testing"

func TestDetectByExtension(t *testing.T) {
	r := NewRegistry()
	tests := []struct {
		file string
		want string
	}{
		{"main.go", "go"},
		{"script.py", "python"},
		{"lib.rs", "rust"},
		{"app.jsx", "javascript"},
		{"notes.md", "markdown"},
		{"conf.json", "json"},
		{".bashrc", "shell"},
		{"main.c", "c"},
		{"widget.hpp", "cpp"},
	}
	for _, tt := range tests {
		l := r.Detect(tt.file, nil)
		if l == nil {
			t.Errorf("Detect(%q) = nil, want %q", tt.file, tt.want)
			continue
		}
		if l.Name != tt.want {
			t.Errorf("Detect(%q) = %q, want %q", tt.file, l.Name, tt.want)
		}
	}
}

func TestDetectHeaderDisambiguation(t *testing.T) {
	r := NewRegistry()

	cHead := []byte("#include <stdio.h>\n\nint add(int a, int b);\n")
	if l := r.Detect("util.h", cHead); l == nil || l.Name != "c" {
		t.Errorf("plain header detected as %v, want c", l)
	}

	cppHead := []byte("#pragma once\n\ntemplate <typename T>\nclass Widget {\npublic:\n  T value;\n};\n")
	if l := r.Detect("widget.h", cppHead); l == nil || l.Name != "cpp" {
		t.Errorf("template header detected as %v, want cpp", l)
	}
}

func TestDetectByShebang(t *testing.T) {
	r := NewRegistry()
	tests := []struct {
		head string
		want string
	}{
		{"#!/bin/sh\necho hi\n", "shell"},
		{"#!/usr/bin/env bash\n", "shell"},
		{"#!/usr/bin/env python3\nprint(1)\n", "python"},
		{"#!/usr/bin/node\n", "javascript"},
	}
	for _, tt := range tests {
		l := r.Detect("", []byte(tt.head))
		if l == nil || l.Name != tt.want {
			t.Errorf("Detect(%q) = %v, want %q", tt.head, l, tt.want)
		}
	}
}

func TestDetectJSONShape(t *testing.T) {
	r := NewRegistry()
	if l := r.Detect("", []byte("  {\"a\": 1}\n")); l == nil || l.Name != "json" {
		t.Errorf("object content detected as %v, want json", l)
	}
	if l := r.Detect("", []byte("just some prose\n")); l != nil {
		t.Errorf("plain prose detected as %v, want nil", l)
	}
}

func TestDetectBinary(t *testing.T) {
	r := NewRegistry()
	elf := append([]byte{0x7f, 'E', 'L', 'F', 2, 1, 1, 0}, make([]byte, 64)...)
	if l := r.Detect("a.out", elf); l != nil {
		t.Errorf("ELF content detected as %v, want nil", l)
	}
}

func TestIsBinary(t *testing.T) {
	if IsBinary([]byte("hello\nworld\n")) {
		t.Error("text classified binary")
	}
	if IsBinary(nil) {
		t.Error("empty classified binary")
	}
	nulls := make([]byte, 100)
	if !IsBinary(nulls) {
		t.Error("NUL run classified text")
	}
	ctrl := make([]byte, 100)
	for i := range ctrl {
		ctrl[i] = 0x01
	}
	if !IsBinary(ctrl) {
		t.Error("control bytes classified text")
	}
}

func TestRegisterCustomLanguage(t *testing.T) {
	r := NewRegistry()
	r.Register(define(Language{Name: "ini", Globs: []string{"*.ini"}}))
	if l := r.Detect("app.ini", nil); l == nil || l.Name != "ini" {
		t.Errorf("Detect(app.ini) = %v, want ini", l)
	}
	if r.ByName("ini") == nil {
		t.Error("ByName(ini) = nil")
	}
}
