package app

import (
	"sync"
	"testing"

	"havenmind_backend/internal/config"
	"havenmind_backend/internal/repository"

	"github.com/stretchr/testify/assert"
)

// The journal-entry background goroutines draw random values through several
// services at once, so the wiring must hand each service its own generator.
func TestInitServicesRandomSourcesSupportConcurrentUse(t *testing.T) {
	cfg := &config.Config{}
	cfg.Storage.Type = "local"
	cfg.Storage.LocalPath = t.TempDir()
	cfg.Sanctuary.CanvasWidth = 800
	cfg.Sanctuary.CanvasHeight = 600

	a := &App{}
	repos := &repositories{
		journal:      repository.NewJournalRepository(nil),
		element:      repository.NewElementRepository(nil),
		skill:        repository.NewSkillRepository(nil),
		skillSession: repository.NewSkillSessionRepository(nil),
		story:        repository.NewStoryRepository(nil),
	}

	s := a.initServices(repos, cfg, nil, nil)
	assert.NotNil(t, s.sanctuary)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				s.visual.Position(nil)
			}
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				s.companion.WelcomeMessage(false)
			}
		}()
	}
	wg.Wait()
}
