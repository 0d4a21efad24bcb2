package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCandidates_PressFirst(t *testing.T) {
	src := BuyerSource{
		ID:        "harbor-sovereign-fund",
		PressURL:  "https://harbor.example.com/press",
		Fallbacks: []string{"https://mirror.example.com", "https://archive.example.com"},
	}
	assert.Equal(t, []string{
		"https://harbor.example.com/press",
		"https://mirror.example.com",
		"https://archive.example.com",
	}, src.Candidates())
}

func TestCandidates_DropsDuplicateOfPress(t *testing.T) {
	src := BuyerSource{
		PressURL:  "https://harbor.example.com/press",
		Fallbacks: []string{"https://harbor.example.com/press", "https://mirror.example.com"},
	}
	assert.Equal(t, []string{
		"https://harbor.example.com/press",
		"https://mirror.example.com",
	}, src.Candidates())
}

func TestCandidates_NoFallbacks(t *testing.T) {
	src := BuyerSource{PressURL: "https://harbor.example.com/press"}
	assert.Equal(t, []string{"https://harbor.example.com/press"}, src.Candidates())
}
