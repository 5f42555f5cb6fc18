package convo

import (
	"fmt"
	"strings"
)

// DefaultSystemPrompt steers the model toward a podcast tone.
const DefaultSystemPrompt = `You are an AI that creates engaging podcast-style conversations between two speakers discussing articles and documents. Your conversations should:

1. Sound natural and conversational, like a real podcast
2. Include genuine reactions, questions, and insights
3. Break down complex topics in an accessible way
4. Maintain an engaging, friendly tone throughout
5. Use natural speech patterns including occasional filler words
6. Show both speakers contributing meaningfully to the discussion`

const promptTemplate = `Based on the following article, create a natural, engaging conversation between two people discussing its content.

Title: %[1]s
URL: %[2]s

Article Content:
%[3]s

Create a conversation between %[4]s and %[5]s discussing this article. Make it sound like a natural podcast discussion where they explore the key points, share insights, and occasionally add their own perspectives. Include:

- A natural introduction mentioning the article title and what caught their attention
- Discussion of the main points with genuine reactions
- Questions and clarifications between the speakers
- Some light analysis or speculation about implications
- A brief wrap-up of key takeaways

Format the conversation with:
**%[6]s:** [their dialogue]
**%[7]s:** [their dialogue]

Make the conversation feel authentic, with natural speech patterns, occasional interruptions, and genuine interest in the topic.`

// BuildPrompt renders the user prompt with first speaking first.
func BuildPrompt(req Request, first, second string) string {
	return fmt.Sprintf(promptTemplate,
		req.Title, req.Source, req.Content,
		first, second,
		strings.ToUpper(first), strings.ToUpper(second))
}
