package service

import (
	"strconv"
	"strings"
)

// AvailableSkills lists every therapeutic skill the app teaches, in catalog
// order. mindful_breathing is the only skill unlocked from the start.
var AvailableSkills = []string{
	"mindful_breathing",
	"gratitude_practice",
	"emotional_regulation",
	"self_compassion",
	"grounding_techniques",
	"positive_visualization",
}

// masteryLevels is the number of tiers (0 through 5).
const masteryLevels = 6

// masteryThresholds are the experience points needed to enter each level.
var masteryThresholds = []int{0, 50, 150, 300, 500, 800}

// SkillLevelInfo describes one mastery tier of a skill.
type SkillLevelInfo struct {
	Level       int    `json:"level"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// SkillInfo is the static catalog entry for a skill.
type SkillInfo struct {
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Levels      []SkillLevelInfo `json:"levels"`
}

var skillCatalog = map[string]SkillInfo{
	"mindful_breathing": {
		Name:        "Mindful Breathing",
		Description: "Practice conscious breathing to center yourself and reduce anxiety.",
		Levels: []SkillLevelInfo{
			{0, "Beginner", "Learn basic 4-4-4 breathing pattern"},
			{1, "Developing", "Extend to 4-7-8 breathing technique"},
			{2, "Practiced", "Incorporate body awareness during breathing"},
			{3, "Skilled", "Use breathing for emotional regulation"},
			{4, "Master", "Teach breathing techniques to others"},
			{5, "Sage", "Breathe with effortless awareness in any circumstance"},
		},
	},
	"gratitude_practice": {
		Name:        "Gratitude Practice",
		Description: "Cultivate appreciation and positive perspective through gratitude exercises.",
		Levels: []SkillLevelInfo{
			{0, "Beginner", "List 3 things you're grateful for daily"},
			{1, "Developing", "Write detailed gratitude reflections"},
			{2, "Practiced", "Express gratitude to others regularly"},
			{3, "Skilled", "Find gratitude in challenging situations"},
			{4, "Master", "Live from a place of constant appreciation"},
			{5, "Sage", "Let gratitude shape how you meet every moment"},
		},
	},
	"emotional_regulation": {
		Name:        "Emotional Regulation",
		Description: "Develop skills to understand and manage your emotional responses.",
		Levels: []SkillLevelInfo{
			{0, "Beginner", "Identify and name your emotions"},
			{1, "Developing", "Recognize emotional triggers"},
			{2, "Practiced", "Use pause technique before reacting"},
			{3, "Skilled", "Transform negative emotions into wisdom"},
			{4, "Master", "Help others with emotional balance"},
			{5, "Sage", "Meet any emotional storm with steady presence"},
		},
	},
	"self_compassion": {
		Name:        "Self-Compassion",
		Description: "Practice kindness toward yourself, especially during difficult times.",
		Levels: []SkillLevelInfo{
			{0, "Beginner", "Notice self-critical thoughts"},
			{1, "Developing", "Replace criticism with kind words"},
			{2, "Practiced", "Treat yourself as you would a good friend"},
			{3, "Skilled", "Embrace imperfection with loving acceptance"},
			{4, "Master", "Model self-compassion for others"},
			{5, "Sage", "Extend unconditional kindness to yourself and others"},
		},
	},
	"grounding_techniques": {
		Name:        "Grounding Techniques",
		Description: "Use sensory awareness to stay present and connected to the moment.",
		Levels: []SkillLevelInfo{
			{0, "Beginner", "Practice 5-4-3-2-1 sensory grounding"},
			{1, "Developing", "Use body-based grounding exercises"},
			{2, "Practiced", "Ground yourself in nature settings"},
			{3, "Skilled", "Quick grounding in stressful situations"},
			{4, "Master", "Maintain groundedness throughout daily life"},
			{5, "Sage", "Stay anchored even in the hardest moments"},
		},
	},
	"positive_visualization": {
		Name:        "Positive Visualization",
		Description: "Use mental imagery to create calm, confidence, and positive outcomes.",
		Levels: []SkillLevelInfo{
			{0, "Beginner", "Visualize peaceful, calming scenes"},
			{1, "Developing", "Create detailed safe space visualizations"},
			{2, "Practiced", "Visualize successful outcomes for goals"},
			{3, "Skilled", "Use visualization for healing and recovery"},
			{4, "Master", "Guide others through visualization exercises"},
			{5, "Sage", "Create inner imagery that transforms daily life"},
		},
	},
}

var skillCategories = map[string]string{
	"mindful_breathing":      "Mindfulness",
	"gratitude_practice":     "Positive Psychology",
	"emotional_regulation":   "Emotional Wellness",
	"self_compassion":        "Self-Care",
	"grounding_techniques":   "Anxiety Management",
	"positive_visualization": "Mindfulness",
}

var skillDifficulties = map[string]string{
	"mindful_breathing":      "Beginner",
	"gratitude_practice":     "Beginner",
	"grounding_techniques":   "Beginner",
	"emotional_regulation":   "Intermediate",
	"self_compassion":        "Intermediate",
	"positive_visualization": "Intermediate",
}

var skillBenefits = map[string][]string{
	"mindful_breathing": {
		"Reduces anxiety and stress",
		"Improves focus and concentration",
		"Promotes relaxation",
		"Helps with emotional regulation",
	},
	"gratitude_practice": {
		"Increases positive emotions",
		"Improves life satisfaction",
		"Strengthens relationships",
		"Reduces depression symptoms",
	},
	"emotional_regulation": {
		"Better emotional awareness",
		"Improved stress management",
		"Healthier relationships",
		"Increased resilience",
	},
	"self_compassion": {
		"Reduces self-criticism",
		"Increases self-acceptance",
		"Improves mental health",
		"Builds emotional resilience",
	},
	"grounding_techniques": {
		"Manages anxiety and panic",
		"Improves present-moment awareness",
		"Provides emotional stability",
		"Helpful for trauma recovery",
	},
	"positive_visualization": {
		"Reduces anxiety about future events",
		"Improves confidence and motivation",
		"Enhances goal achievement",
		"Promotes relaxation and calm",
	},
}

// SkillGuidance is a concrete practice plan for one skill at one level.
type SkillGuidance struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Steps       []string `json:"steps"`
	Duration    string   `json:"duration"`
	Tips        []string `json:"tips"`
}

// skillGuidanceData holds hand-written guidance for the first two mastery
// levels of each skill. Higher levels fall back to a generic plan.
var skillGuidanceData = map[string]map[int]SkillGuidance{
	"mindful_breathing": {
		0: {
			Title:       "Basic Mindful Breathing",
			Description: "Learn the foundation of conscious breathing",
			Steps: []string{
				"Find a comfortable seated position",
				"Place one hand on your chest, one on your belly",
				"Breathe in slowly through your nose for 4 counts",
				"Hold your breath for 4 counts",
				"Exhale slowly through your mouth for 4 counts",
				"Repeat for 5-10 cycles",
			},
			Duration: "5-10 minutes",
			Tips: []string{
				"Focus on the feeling of air moving in and out",
				"Don't worry if your mind wanders, just return to your breath",
			},
		},
		1: {
			Title:       "Extended Breathing Practice",
			Description: "Develop the 4-7-8 breathing technique",
			Steps: []string{
				"Sit or lie down comfortably",
				"Exhale completely through your mouth",
				"Close your mouth and inhale through nose for 4 counts",
				"Hold your breath for 7 counts",
				"Exhale through mouth for 8 counts",
				"Repeat 4-8 cycles",
			},
			Duration: "10-15 minutes",
			Tips: []string{
				"This pattern is especially calming",
				"Practice regularly for best results",
			},
		},
	},
	"gratitude_practice": {
		0: {
			Title:       "Daily Gratitude List",
			Description: "Build the habit of recognizing daily blessings",
			Steps: []string{
				"Set aside 5 minutes each day",
				"Write down 3 things you're grateful for",
				"Be specific about why you're grateful",
				"Include small and large things",
				"Read your list aloud to yourself",
			},
			Duration: "5-10 minutes",
			Tips: []string{
				"Try to find new things each day",
				"Include people, experiences, and simple pleasures",
			},
		},
		1: {
			Title:       "Deeper Gratitude Reflection",
			Description: "Explore the deeper meaning behind your gratitude",
			Steps: []string{
				"Choose one thing you're grateful for",
				"Write a paragraph about why it matters to you",
				"Reflect on how it has impacted your life",
				"Consider how you can honor this blessing",
				"Share your gratitude with someone if appropriate",
			},
			Duration: "10-15 minutes",
			Tips: []string{
				"Focus on quality over quantity",
				"Let yourself really feel the gratitude",
			},
		},
	},
	"emotional_regulation": {
		0: {
			Title:       "Emotion Identification",
			Description: "Learn to recognize and name your emotions",
			Steps: []string{
				"Pause and check in with yourself",
				"Notice what you're feeling in your body",
				"Name the emotion as specifically as possible",
				"Rate the intensity from 1-10",
				"Ask yourself: What triggered this feeling?",
				"Accept the emotion without judgment",
			},
			Duration: "3-5 minutes",
			Tips: []string{
				"Use an emotion wheel for more specific words",
				"Remember all emotions are valid",
			},
		},
		1: {
			Title:       "The Emotional Pause",
			Description: "Create space between trigger and response",
			Steps: []string{
				"When you notice a strong emotion, stop",
				"Take 3 deep breaths",
				"Name what you're feeling",
				"Ask: What does this emotion need?",
				"Choose your response consciously",
				"Act from wisdom, not just feeling",
			},
			Duration: "2-3 minutes",
			Tips: []string{
				"The pause gets easier with practice",
				"Even a few seconds can make a difference",
			},
		},
	},
	"self_compassion": {
		0: {
			Title:       "Self-Compassion Break",
			Description: "Practice the three components of self-compassion",
			Steps: []string{
				"Acknowledge: 'This is a moment of difficulty'",
				"Remember: 'Difficulty is part of life'",
				"Offer yourself kindness: 'May I be kind to myself'",
				"Place a gentle hand on your heart",
				"Take a few deep breaths",
				"Speak to yourself as you would a dear friend",
			},
			Duration: "3-5 minutes",
			Tips: []string{
				"Use your own words that feel authentic",
				"Physical touch can enhance the practice",
			},
		},
		1: {
			Title:       "Self-Compassionate Letter",
			Description: "Write yourself a letter of understanding and support",
			Steps: []string{
				"Think of a situation causing you difficulty",
				"Write a letter to yourself from the perspective of a loving friend",
				"Acknowledge your pain without minimizing it",
				"Remind yourself that struggle is human",
				"Offer yourself words of encouragement",
				"Include what you need to hear right now",
			},
			Duration: "15-20 minutes",
			Tips: []string{
				"Write as if to your best friend",
				"Keep the letter to read when needed",
			},
		},
	},
	"grounding_techniques": {
		0: {
			Title:       "5-4-3-2-1 Grounding",
			Description: "Use your senses to connect with the present moment",
			Steps: []string{
				"Name 5 things you can see",
				"Name 4 things you can touch",
				"Name 3 things you can hear",
				"Name 2 things you can smell",
				"Name 1 thing you can taste",
				"Take a few deep breaths",
			},
			Duration: "3-5 minutes",
			Tips: []string{
				"Take your time with each sense",
				"Really focus on the details",
			},
		},
		1: {
			Title:       "Body-Based Grounding",
			Description: "Use physical sensations to anchor yourself",
			Steps: []string{
				"Feel your feet on the ground",
				"Press your palms together",
				"Squeeze and release your fists",
				"Roll your shoulders back",
				"Feel your back against your chair",
				"Notice your breath naturally flowing",
			},
			Duration: "3-7 minutes",
			Tips: []string{
				"Focus on physical sensations",
				"Move slowly and mindfully",
			},
		},
	},
	"positive_visualization": {
		0: {
			Title:       "Safe Place Visualization",
			Description: "Create a mental sanctuary for peace and calm",
			Steps: []string{
				"Close your eyes and breathe deeply",
				"Imagine a place where you feel completely safe",
				"See the details: colors, textures, lighting",
				"Notice sounds and smells in this place",
				"Feel the sense of peace and safety",
				"Know you can return here anytime",
			},
			Duration: "10-15 minutes",
			Tips: []string{
				"Your safe place can be real or imaginary",
				"Make it as vivid as possible",
			},
		},
		1: {
			Title:       "Success Visualization",
			Description: "Visualize positive outcomes and achievements",
			Steps: []string{
				"Choose a goal or challenge you're facing",
				"Imagine yourself handling it successfully",
				"See yourself confident and capable",
				"Notice how success feels in your body",
				"Visualize the positive impact on your life",
				"End with affirmations of your capability",
			},
			Duration: "10-20 minutes",
			Tips: []string{
				"Make the visualization detailed and realistic",
				"Include emotional and physical sensations",
			},
		},
	},
}

// KnownSkill reports whether a skill name exists in the catalog.
func KnownSkill(name string) bool {
	_, ok := skillCatalog[name]
	return ok
}

// SkillDescription returns the catalog entry for a skill plus the tier the
// given mastery level sits in. Unknown skills get a generic entry.
func SkillDescription(skillName string, masteryLevel int) (SkillInfo, SkillLevelInfo) {
	info, ok := skillCatalog[skillName]
	if !ok {
		info = SkillInfo{
			Name:        titleCase(strings.ReplaceAll(skillName, "_", " ")),
			Description: "A therapeutic skill for emotional wellness.",
		}
		for i := 0; i < masteryLevels; i++ {
			n := strconv.Itoa(i)
			info.Levels = append(info.Levels, SkillLevelInfo{
				Level:       i,
				Title:       "Level " + n,
				Description: "Level " + n + " practice",
			})
		}
	}

	idx := masteryLevel
	if idx > len(info.Levels)-1 {
		idx = len(info.Levels) - 1
	}
	if idx < 0 {
		idx = 0
	}
	return info, info.Levels[idx]
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
