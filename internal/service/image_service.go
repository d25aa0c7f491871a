package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"havenmind_backend/internal/provider"
	"havenmind_backend/pkg/logger"
	"havenmind_backend/pkg/monitoring"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var elementDescriptions = map[string]string{
	"flower":    "a beautiful, ethereal flower with delicate petals",
	"tree":      "a majestic, ancient tree with flowing branches",
	"crystal":   "a luminous, mystical crystal formation",
	"butterfly": "a graceful butterfly with iridescent wings",
	"bird":      "a serene bird perched peacefully",
	"plant":     "a lush, verdant plant with vibrant leaves",
	"stone":     "a smooth, weathered stone with natural patterns",
	"water":     "flowing, crystalline water with gentle ripples",
	"cloud":     "a soft, dreamy cloud formation",
	"rock":      "a solid, grounding rock formation",
	"moss":      "soft, green moss covering ancient surfaces",
	"mist":      "ethereal mist swirling gently",
	"stream":    "a peaceful stream with clear water",
	"cave":      "a mystical cave entrance with soft lighting",
	"shadow":    "gentle shadows creating depth and mystery",
	"wind":      "visible air currents creating movement",
}

var imageEmotionModifiers = map[string]string{
	"joy":       "radiating golden light, warm and uplifting",
	"love":      "glowing with pink and rose tones, heart-warming",
	"gratitude": "surrounded by warm, amber light",
	"hope":      "shimmering with silver and blue light",
	"calm":      "emanating peaceful, soft blue energy",
	"sadness":   "touched with gentle blue and purple hues",
	"anger":     "flickering with controlled red energy",
	"fear":      "shrouded in protective, dark tones",
	"anxiety":   "surrounded by swirling, muted colors",
	"neutral":   "balanced with natural, earth tones",
}

var imageStyleSuffixes = map[string]string{
	"fantasy-art": ", fantasy art style, magical realism, soft lighting, 4k quality",
	"nature":      ", natural photography style, organic, soft focus",
	"abstract":    ", abstract art style, flowing forms, artistic interpretation",
	"watercolor":  ", watercolor painting style, soft edges, artistic",
	"digital-art": ", digital art style, clean lines, modern aesthetic",
}

var visualThemeKeywords = map[string][]string{
	"growth":         {"growing", "blooming", "flourishing"},
	"strength":       {"strong", "powerful", "resilient"},
	"peace":          {"peaceful", "calm", "serene"},
	"transformation": {"changing", "becoming", "evolving"},
	"connection":     {"together", "connected", "unity"},
	"healing":        {"healing", "recovery", "restoration"},
	"freedom":        {"free", "liberated", "soaring"},
	"protection":     {"safe", "protected", "sheltered"},
}

// visualThemeOrder keeps theme extraction deterministic.
var visualThemeOrder = []string{"growth", "strength", "peace", "transformation", "connection", "healing", "freedom", "protection"}

var storyLocationKeywords = map[string]string{
	"forest":   "mystical forest with ancient trees",
	"library":  "grand library with towering bookshelves",
	"castle":   "medieval castle with stone walls",
	"village":  "quaint medieval village",
	"mountain": "majestic mountain landscape",
	"ocean":    "vast ocean with rolling waves",
	"cave":     "mysterious cave with natural formations",
	"garden":   "beautiful garden with flowers",
	"temple":   "sacred temple with ancient architecture",
	"desert":   "vast desert landscape",
	"river":    "flowing river through nature",
	"bridge":   "old stone bridge",
	"path":     "winding path through nature",
}

var storyLocationOrder = []string{"forest", "library", "castle", "village", "mountain", "ocean", "cave", "garden", "temple", "desert", "river", "bridge", "path"}

var storyEmotionModifiers = map[string]string{
	"wise":       "with ancient wisdom and golden light",
	"peaceful":   "with serene, calming atmosphere",
	"mysterious": "with dramatic shadows and intrigue",
	"magical":    "with ethereal, mystical energy",
	"powerful":   "with strength and determination",
	"gentle":     "with soft, warm lighting",
	"ancient":    "with timeless, sacred atmosphere",
}

var storyEmotionOrder = []string{"wise", "peaceful", "mysterious", "magical", "powerful", "gentle", "ancient"}

var storyThemeAtmospheres = map[string]string{
	"adventure":                    "epic adventure atmosphere, heroic composition",
	"mystery":                      "mysterious atmosphere, dramatic shadows",
	"fantasy":                      "magical fantasy world, ethereal elements",
	"wisdom":                       "scholarly atmosphere, golden hour lighting",
	"meditation":                   "peaceful, contemplative mood",
	"transformation_and_growth":    "uplifting, transformative lighting",
	"connection_and_belonging":     "warm, welcoming atmosphere",
	"overcoming_challenges":        "dramatic, hopeful atmosphere",
	"finding_inner_light":          "radiant, glowing atmosphere",
	"finding_peace_in_uncertainty": "calm, misty atmosphere",
	"the_healing_journey":          "gentle, restorative atmosphere",
	"present_moment_awareness":     "still, contemplative atmosphere",
	"discovering_inner_wisdom":     "luminous, reflective atmosphere",
}

var unsplashThemeKeywords = map[string][2]string{
	"adventure": {"mountain landscape adventure", "epic cinematic"},
	"mystery":   {"dark forest mysterious", "dramatic atmospheric"},
	"fantasy":   {"magical forest fantasy", "ethereal cinematic"},
	"wisdom":    {"ancient library wisdom", "golden hour"},
}

// ImageService renders images for sanctuary elements and stories. Sanctuary
// images fall back to procedural rendering; story images fall back to a
// curated Unsplash URL, so both always return something usable.
type ImageService struct {
	enhancer       provider.TextProvider
	imageProviders []provider.ImageProvider
	renderer       *ProceduralRenderer
	storage        *StorageService
}

func NewImageService(
	enhancer provider.TextProvider,
	imageProviders []provider.ImageProvider,
	renderer *ProceduralRenderer,
	storage *StorageService,
) *ImageService {
	return &ImageService{
		enhancer:       enhancer,
		imageProviders: imageProviders,
		renderer:       renderer,
		storage:        storage,
	}
}

// SanctuaryImage generates the image for one sanctuary element and returns
// the image URL plus the prompt that produced it.
func (s *ImageService) SanctuaryImage(ctx context.Context, elementType, emotion, journalEntry string) (string, string) {
	prompt := sanctuaryImagePrompt(elementType, emotion, journalEntry, "fantasy-art")

	if enhanced := s.enhancePrompt(ctx, prompt, journalEntry); enhanced != "" {
		prompt = enhanced
	}

	for _, p := range s.imageProviders {
		start := time.Now()
		url, err := p.Generate(ctx, prompt, provider.ImageKindSanctuary)
		monitoring.ObserveAICall(p.Name(), start, err)
		if err != nil {
			logger.Log.Warn("image provider failed",
				zap.String("provider", p.Name()),
				zap.Error(err))
			continue
		}
		if url != "" {
			return url, prompt
		}
	}

	logger.Log.Info("falling back to procedural image generation",
		zap.String("element_type", elementType))
	url, err := s.proceduralImage(ctx, elementType, emotion)
	if err != nil {
		logger.Log.Error("procedural image generation failed", zap.Error(err))
		return "", prompt
	}
	return url, prompt
}

// StoryImage generates a background image for a story, degrading to a curated
// Unsplash URL when no provider can render one.
func (s *ImageService) StoryImage(ctx context.Context, storyContent, storyTitle, style, theme string) string {
	prompt := storyImagePrompt(storyContent, style, theme)

	if enhanced := s.enhancePrompt(ctx, prompt, storyContent); enhanced != "" {
		prompt = enhanced
	}

	for _, p := range s.imageProviders {
		start := time.Now()
		url, err := p.Generate(ctx, prompt, provider.ImageKindStory)
		monitoring.ObserveAICall(p.Name(), start, err)
		if err != nil {
			logger.Log.Warn("story image provider failed",
				zap.String("provider", p.Name()),
				zap.Error(err))
			continue
		}
		if url != "" {
			return url
		}
	}

	return unsplashFallbackURL(storyContent, theme)
}

// proceduralImage renders the element locally, stores the PNG, and returns
// its URL. If storage fails the data URL itself is returned.
func (s *ImageService) proceduralImage(ctx context.Context, elementType, emotion string) (string, error) {
	dataURL, err := s.renderer.Render(elementType, emotion)
	if err != nil {
		return "", err
	}

	encoded := strings.TrimPrefix(dataURL, "data:image/png;base64,")
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return dataURL, nil
	}

	filename := fmt.Sprintf("elements/%s.png", uuid.New().String())
	url, err := s.storage.Upload(ctx, filename, bytes.NewReader(raw), int64(len(raw)), "image/png")
	if err != nil {
		logger.Log.Warn("storing procedural image failed, returning data url", zap.Error(err))
		return dataURL, nil
	}
	return url, nil
}

func (s *ImageService) enhancePrompt(ctx context.Context, basePrompt, sourceText string) string {
	if s.enhancer == nil {
		return ""
	}

	request := fmt.Sprintf(`You are an expert at creating detailed, cinematic image generation prompts.

Analyze this story content and create a vivid visual scene:
Story Content: "%s"
Basic Prompt: "%s"

Instructions:
1. Identify the key visual elements: characters, setting, actions, important objects.
2. Create a detailed image prompt with character descriptions, setting details, mood and lighting, artistic style, color palette, and composition.
3. Make it cinematic and atmospheric while staying true to the content.

Return only the enhanced visual prompt, nothing else.`, sourceText, basePrompt)

	start := time.Now()
	enhanced, err := s.enhancer.Complete(ctx, "", request, provider.TextOptions{
		MaxTokens:   300,
		Temperature: 0.7,
		TopP:        0.8,
	})
	monitoring.ObserveAICall(s.enhancer.Name(), start, err)
	if err != nil {
		logger.Log.Warn("prompt enhancement failed", zap.Error(err))
		return ""
	}
	return strings.TrimSpace(enhanced)
}

func sanctuaryImagePrompt(elementType, emotion, journalEntry, style string) string {
	baseDesc, ok := elementDescriptions[elementType]
	if !ok {
		baseDesc = "a mystical sanctuary element"
	}
	emotionMod, ok := imageEmotionModifiers[emotion]
	if !ok {
		emotionMod = "with gentle, natural energy"
	}

	themeDesc := ""
	if themes := extractVisualThemes(journalEntry); len(themes) > 0 {
		themeDesc = ", embodying themes of " + strings.Join(themes, ", ")
	}

	prompt := baseDesc + " " + emotionMod + themeDesc + imageStyleSuffixes[style]
	prompt += ", peaceful sanctuary setting, therapeutic atmosphere, high quality, detailed"
	return prompt
}

func extractVisualThemes(text string) []string {
	lower := strings.ToLower(text)
	themes := []string{}
	for _, theme := range visualThemeOrder {
		for _, keyword := range visualThemeKeywords[theme] {
			if strings.Contains(lower, keyword) {
				themes = append(themes, theme)
				break
			}
		}
		if len(themes) == 3 {
			break
		}
	}
	return themes
}

func storyImagePrompt(storyContent, style, theme string) string {
	lower := strings.ToLower(storyContent)
	parts := []string{}

	// setting
	setting := ""
	for _, location := range storyLocationOrder {
		if strings.Contains(lower, location) {
			setting = storyLocationKeywords[location]
			break
		}
	}
	if setting == "" {
		themeSettings := map[string]string{
			"wisdom":     "an ancient library or study",
			"adventure":  "a mystical landscape",
			"mystery":    "a shadowy, atmospheric place",
			"fantasy":    "a magical realm",
			"meditation": "a peaceful, serene environment",
		}
		if s, ok := themeSettings[theme]; ok {
			setting = s
		} else {
			setting = "a cinematic scene"
		}
	}
	parts = append(parts, setting)

	// emotional atmosphere
	for _, emotion := range storyEmotionOrder {
		if strings.Contains(lower, emotion) {
			parts = append(parts, storyEmotionModifiers[emotion])
			break
		}
	}

	styleEnhancements := map[string]string{
		"fantasy-art": "fantasy art style, magical realism, cinematic lighting",
		"realistic":   "photorealistic, natural lighting, detailed",
		"artistic":    "artistic illustration, painterly style",
		"watercolor":  "watercolor painting, soft edges, artistic",
		"digital-art": "digital art, clean composition, modern",
		"cinematic":   "cinematic composition, dramatic lighting, film-like",
	}
	styleEnhancement, ok := styleEnhancements[style]
	if !ok {
		styleEnhancement = "cinematic lighting, artistic"
	}

	atmosphere, ok := storyThemeAtmospheres[theme]
	if !ok {
		atmosphere = "atmospheric, cinematic"
	}

	prompt := strings.Join(parts, " ") + ", " + styleEnhancement + ", " + atmosphere + ", high quality, detailed, immersive"
	return strings.TrimSpace(strings.ReplaceAll(prompt, "  ", " "))
}

func unsplashFallbackURL(storyContent, theme string) string {
	lower := strings.ToLower(storyContent)

	primary := "fantasy landscape"
	secondary := "cinematic"
	if keywords, ok := unsplashThemeKeywords[theme]; ok {
		primary = keywords[0]
		secondary = keywords[1]
	}

	for _, location := range storyLocationOrder {
		if strings.Contains(lower, location) {
			primary = location + " landscape"
			break
		}
	}

	switch {
	case strings.Contains(lower, "dark") || strings.Contains(lower, "night"):
		secondary += " night dramatic"
	case strings.Contains(lower, "bright") || strings.Contains(lower, "golden"):
		secondary += " golden hour"
	case strings.Contains(lower, "misty") || strings.Contains(lower, "fog"):
		secondary += " misty atmospheric"
	}

	keywords := primary + "," + secondary + "," + theme
	collections := "1114848,1127901,3356108"
	return fmt.Sprintf("https://source.unsplash.com/1344x768/?%s&collections=%s",
		strings.ReplaceAll(keywords, " ", "%20"), collections)
}
