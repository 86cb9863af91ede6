package classify

import (
	"math"
	"runtime"
	"sync"

	"github.com/RyanBlaney/sonido-mix/analysis/spectral"
	"github.com/RyanBlaney/sonido-mix/audio"
	"github.com/RyanBlaney/sonido-mix/logging"
)

// featureKind selects the scoring curve for a profile entry.
type featureKind int

const (
	// ratioFeature rewards meeting or exceeding the target: min(1, v/t)
	ratioFeature featureKind = iota
	// centroidFeature rewards proximity to the target: max(0, 1-|v-t|/t)
	centroidFeature
)

// profileEntry is one expectation within a role profile.
type profileEntry struct {
	value  func(*spectral.Features) float64
	target float64
	kind   featureKind
}

// roleProfile holds the spectral expectations for one role.
type roleProfile struct {
	role    audio.Role
	entries []profileEntry
}

func lowRatio(f *spectral.Features) float64   { return f.LowEnergyRatio }
func midRatio(f *spectral.Features) float64   { return f.MidEnergyRatio }
func highRatio(f *spectral.Features) float64  { return f.HighEnergyRatio }
func harmonic(f *spectral.Features) float64   { return f.HarmonicRatio }
func transient(f *spectral.Features) float64  { return f.TransientStrength }
func formants(f *spectral.Features) float64   { return f.FormantPresence }
func centroidOf(f *spectral.Features) float64 { return f.Centroid }

// roleProfiles encode where each instrument lives spectrally. Targets
// were tuned on labelled stem libraries; the centroid targets are in Hz.
var roleProfiles = []roleProfile{
	{audio.RoleKick, []profileEntry{
		{lowRatio, 0.4, ratioFeature},
		{transient, 0.6, ratioFeature},
		{harmonic, 0.3, ratioFeature},
		{centroidOf, 200, centroidFeature},
	}},
	{audio.RoleBass, []profileEntry{
		{lowRatio, 0.5, ratioFeature},
		{harmonic, 0.6, ratioFeature},
		{centroidOf, 300, centroidFeature},
	}},
	{audio.RoleSnare, []profileEntry{
		{midRatio, 0.3, ratioFeature},
		{transient, 0.7, ratioFeature},
		{centroidOf, 2000, centroidFeature},
	}},
	{audio.RoleHihat, []profileEntry{
		{highRatio, 0.6, ratioFeature},
		{transient, 0.5, ratioFeature},
		{centroidOf, 8000, centroidFeature},
	}},
	{audio.RoleVocal, []profileEntry{
		{midRatio, 0.4, ratioFeature},
		{harmonic, 0.7, ratioFeature},
		{formants, 0.5, ratioFeature},
		{centroidOf, 1000, centroidFeature},
	}},
	{audio.RoleSynth, []profileEntry{
		{harmonic, 0.6, ratioFeature},
		{centroidOf, 1500, centroidFeature},
	}},
	{audio.RoleGuitar, []profileEntry{
		{midRatio, 0.65, ratioFeature},
		{transient, 0.35, ratioFeature},
		{centroidOf, 1200, centroidFeature},
	}},
	{audio.RolePiano, []profileEntry{
		{harmonic, 0.75, ratioFeature},
		{transient, 0.4, ratioFeature},
		{centroidOf, 800, centroidFeature},
	}},
}

// confidenceFloor: content scores at or below this fall back to "other".
const confidenceFloor = 0.5

// Classifier assigns a role to each stem, preferring the filename
// heuristic and falling back to spectral feature scoring.
type Classifier struct {
	analyzer *spectral.FeatureAnalyzer
	logger   logging.Logger
}

// NewClassifier creates a classifier with the default feature analyzer.
func NewClassifier() *Classifier {
	return &Classifier{
		analyzer: spectral.NewFeatureAnalyzer(),
		logger:   logging.WithFields(logging.Fields{"component": "classifier"}),
	}
}

// Classify determines the role and confidence for a single stem.
// A filename match is authoritative (confidence 1.0).
func (c *Classifier) Classify(stem *audio.Stem) (audio.Role, float64) {
	if role, ok := RoleFromFilename(stem.Name); ok {
		c.logger.Debug("classified from filename", logging.Fields{
			"stem": stem.Name,
			"role": string(role),
		})
		return role, 1.0
	}

	features, err := c.analyzer.Compute(stem.Buffer.Mono(), stem.Buffer.SampleRate)
	if err != nil {
		c.logger.Warn("feature extraction failed, defaulting to other", logging.Fields{
			"stem":  stem.Name,
			"error": err.Error(),
		})
		return audio.RoleOther, 0.0
	}

	role, confidence := scoreProfiles(features)
	if confidence <= confidenceFloor {
		return audio.RoleOther, confidence
	}

	c.logger.Debug("classified from content", logging.Fields{
		"stem":       stem.Name,
		"role":       string(role),
		"confidence": confidence,
	})
	return role, confidence
}

// scoreProfiles evaluates all role profiles and returns the best match.
func scoreProfiles(features *spectral.Features) (audio.Role, float64) {
	bestRole := audio.RoleOther
	bestScore := 0.0

	for _, profile := range roleProfiles {
		sum := 0.0
		for _, entry := range profile.entries {
			v := entry.value(features)
			switch entry.kind {
			case centroidFeature:
				sum += math.Max(0, 1.0-math.Abs(v-entry.target)/entry.target)
			default:
				if entry.target > 0 {
					sum += math.Min(1.0, v/entry.target)
				}
			}
		}
		score := sum / float64(len(profile.entries))
		if score > bestScore {
			bestScore = score
			bestRole = profile.role
		}
	}

	return bestRole, bestScore
}

// ClassifyAll classifies every stem concurrently and writes the result
// onto each stem. Track indexes are assigned in input order.
func (c *Classifier) ClassifyAll(stems []*audio.Stem) {
	numWorkers := min(runtime.NumCPU(), len(stems))
	if numWorkers < 1 {
		return
	}

	jobs := make(chan int, len(stems))

	var wg sync.WaitGroup
	for w := 0; w < numWorkers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				stem := stems[idx]
				role, confidence := c.Classify(stem)
				stem.Role = role
				stem.Confidence = confidence
				stem.TrackIndex = idx
			}
		}()
	}

	for idx := range stems {
		jobs <- idx
	}
	close(jobs)
	wg.Wait()

	for _, stem := range stems {
		c.logger.Info("stem classified", logging.Fields{
			"stem":       stem.Name,
			"role":       string(stem.Role),
			"confidence": stem.Confidence,
		})
	}
}
