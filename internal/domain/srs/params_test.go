package srs

import (
	"errors"
	"testing"

	"github.com/snapvocab/snapvocab-api/internal/domain"
)

func TestNewDefaultParams(t *testing.T) {
	params := NewDefaultParams()

	if params.MinEasinessFactor != 1.3 {
		t.Errorf("MinEasinessFactor should be 1.3, got %f", params.MinEasinessFactor)
	}

	ratings := []domain.Rating{domain.RatingHard, domain.RatingGood, domain.RatingEasy}
	for _, r := range ratings {
		if _, exists := params.FirstSuccessIntervals[r]; !exists {
			t.Errorf("FirstSuccessIntervals missing for rating %s", r)
		}
		if _, exists := params.SecondSuccessIntervals[r]; !exists {
			t.Errorf("SecondSuccessIntervals missing for rating %s", r)
		}
	}

	if params.LearnedThresholdDays != 21 {
		t.Errorf("LearnedThresholdDays should be 21, got %d", params.LearnedThresholdDays)
	}

	if err := params.Validate(); err != nil {
		t.Errorf("Default params should be valid, got %v", err)
	}
}

func TestNewParams(t *testing.T) {
	config := ParamsConfig{
		MinEasinessFactor:         1.5,
		FirstSuccessGoodInterval:  3,
		SecondSuccessEasyInterval: 10,
		HardIntervalModifier:      0.9,
		LearnedThresholdDays:      30,
	}

	params := NewParams(config)

	if params.MinEasinessFactor != 1.5 {
		t.Errorf("Expected MinEasinessFactor 1.5, got %f", params.MinEasinessFactor)
	}
	if params.FirstSuccessIntervals[domain.RatingGood] != 3 {
		t.Errorf("Expected first Good interval 3, got %d", params.FirstSuccessIntervals[domain.RatingGood])
	}
	if params.FirstSuccessIntervals[domain.RatingEasy] != 7 {
		t.Errorf("Expected first Easy interval to keep default 7, got %d", params.FirstSuccessIntervals[domain.RatingEasy])
	}
	if params.SecondSuccessIntervals[domain.RatingEasy] != 10 {
		t.Errorf("Expected second Easy interval 10, got %d", params.SecondSuccessIntervals[domain.RatingEasy])
	}
	if params.HardIntervalModifier != 0.9 {
		t.Errorf("Expected HardIntervalModifier 0.9, got %f", params.HardIntervalModifier)
	}
	if params.EasyIntervalModifier != 1.3 {
		t.Errorf("Expected EasyIntervalModifier to keep default 1.3, got %f", params.EasyIntervalModifier)
	}
	if params.LearnedThresholdDays != 30 {
		t.Errorf("Expected LearnedThresholdDays 30, got %d", params.LearnedThresholdDays)
	}

	// Overrides on one instance must not leak into the defaults
	if NewDefaultParams().FirstSuccessIntervals[domain.RatingGood] != 4 {
		t.Error("Default params were mutated by NewParams")
	}
}

func TestParamsValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Params)
	}{
		{"floor below 1.3", func(p *Params) { p.MinEasinessFactor = 1.2 }},
		{"zero again interval", func(p *Params) { p.AgainIntervalDays = 0 }},
		{"zero threshold", func(p *Params) { p.LearnedThresholdDays = 0 }},
		{"negative modifier", func(p *Params) { p.EasyIntervalModifier = -1 }},
		{"missing first interval", func(p *Params) { delete(p.FirstSuccessIntervals, domain.RatingHard) }},
		{"zero second interval", func(p *Params) { p.SecondSuccessIntervals[domain.RatingGood] = 0 }},
	}

	for _, tt := range tests {
		p := NewDefaultParams()
		tt.mutate(p)
		if err := p.Validate(); !errors.Is(err, ErrInvalidParams) {
			t.Errorf("%s: expected ErrInvalidParams, got %v", tt.name, err)
		}
	}
}
