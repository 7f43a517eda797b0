package tasks

import "github.com/goodtune/focusd/internal/storage"

// template is a canned task suggestion for one goal area.
type template struct {
	Title       string
	Description string
	Priority    storage.Priority
}

// taskTemplates maps each onboarding goal area to its suggestions.
var taskTemplates = map[string][]template{
	"health": {
		{Title: "Take a 15-minute walk outside", Description: "Fresh air and movement to boost energy", Priority: storage.PriorityMedium},
		{Title: "Drink 8 glasses of water today", Description: "Stay hydrated for better focus", Priority: storage.PriorityHigh},
		{Title: "Do 10 minutes of stretching", Description: "Release tension and improve flexibility", Priority: storage.PriorityLow},
		{Title: "Prepare a healthy meal", Description: "Nourish your body with wholesome ingredients", Priority: storage.PriorityMedium},
		{Title: "Get 7-8 hours of sleep", Description: "Quality rest for optimal performance", Priority: storage.PriorityHigh},
	},
	"learning": {
		{Title: "Read for 20 minutes", Description: "Expand your knowledge and perspective", Priority: storage.PriorityMedium},
		{Title: "Watch an educational video", Description: "Learn something new today", Priority: storage.PriorityLow},
		{Title: "Practice a new skill for 15 minutes", Description: "Build expertise through consistent practice", Priority: storage.PriorityMedium},
		{Title: "Write in a learning journal", Description: "Reflect on what you've discovered", Priority: storage.PriorityLow},
		{Title: "Take an online course lesson", Description: "Invest in your personal development", Priority: storage.PriorityHigh},
	},
	"relationships": {
		{Title: "Call a friend or family member", Description: "Strengthen your connections", Priority: storage.PriorityMedium},
		{Title: "Send a thoughtful message", Description: "Let someone know you're thinking of them", Priority: storage.PriorityLow},
		{Title: "Plan quality time with loved ones", Description: "Create meaningful shared experiences", Priority: storage.PriorityHigh},
		{Title: "Practice active listening", Description: "Be fully present in conversations", Priority: storage.PriorityMedium},
		{Title: "Express gratitude to someone", Description: "Share appreciation for others", Priority: storage.PriorityLow},
	},
	"mindfulness": {
		{Title: "Meditate for 10 minutes", Description: "Calm your mind and center yourself", Priority: storage.PriorityHigh},
		{Title: "Practice deep breathing", Description: "Reduce stress with mindful breathing", Priority: storage.PriorityMedium},
		{Title: "Write in a gratitude journal", Description: "Focus on the positive aspects of life", Priority: storage.PriorityLow},
		{Title: "Take a mindful nature break", Description: "Connect with the natural world", Priority: storage.PriorityMedium},
		{Title: "Do a body scan meditation", Description: "Increase awareness of physical sensations", Priority: storage.PriorityLow},
	},
	"creativity": {
		{Title: "Work on a creative project", Description: "Express yourself through art or craft", Priority: storage.PriorityHigh},
		{Title: "Brainstorm new ideas", Description: "Let your imagination run free", Priority: storage.PriorityMedium},
		{Title: "Try a new creative technique", Description: "Experiment with unfamiliar methods", Priority: storage.PriorityLow},
		{Title: "Document your creative process", Description: "Reflect on your artistic journey", Priority: storage.PriorityLow},
		{Title: "Share your creativity with others", Description: "Get feedback and inspire others", Priority: storage.PriorityMedium},
	},
	"career": {
		{Title: "Update your professional profile", Description: "Keep your credentials current", Priority: storage.PriorityMedium},
		{Title: "Network with a colleague", Description: "Build professional relationships", Priority: storage.PriorityLow},
		{Title: "Learn a job-relevant skill", Description: "Invest in your career development", Priority: storage.PriorityHigh},
		{Title: "Organize your workspace", Description: "Create an environment for productivity", Priority: storage.PriorityLow},
		{Title: "Set a professional goal", Description: "Define clear objectives for growth", Priority: storage.PriorityHigh},
	},
}

// motivationalQuotes rotate deterministically by day.
var motivationalQuotes = []string{
	"The journey of a thousand miles begins with one step.",
	"Focus on progress, not perfection.",
	"Small daily improvements lead to stunning results.",
	"Your future self will thank you for starting today.",
	"Mindful moments create a meaningful life.",
	"Every small step forward is still progress.",
	"Peace comes from within. Do not seek it from outside.",
	"The present moment is the only time over which we have power.",
}
