package service

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/onurcolak/digest-scheduler/internal/domain"
)

const unknownChat = "Unknown Chat"

const promptInstructions = `You are a highly efficient personal assistant.
Your task is to provide a detailed summary of the WhatsApp messages below, strictly organized by their **Group Name** or **Contact Name**.

MANDATORY FORMATTING RULES:
1. **HEADERS**: Every section MUST start with the Name of the group or person in BOLD (e.g., ### **468 - Project ER @ Chai Chee**).
2. **NO TOPICAL GROUPING**: Do not group by topics like "Cement" or "Operations". Summarize everything that happened in one chat under its own header.
3. **TEMPLATE PER CHAT**:
   ### **[CHAT NAME]**
   - **Who talked**: [Participants]
   - **Summary**: [Detailed, bulleted recap of all events, decisions, and updates in this specific chat.]

4. Split the output into two major sections:
   ## 🏆 GROUP ACTIVITIES
   ## 👤 PRIVATE CONVERSATIONS

DATA TO SUMMARIZE:
---
`

const (
	groupSection   = "## 🏆 GROUP ACTIVITIES"
	privateSection = "## 👤 PRIVATE CONVERSATIONS"
)

// ChatTranscript is one chat's messages under its display name.
type ChatTranscript struct {
	Name     string
	Messages []domain.Message
}

// Partition buckets messages into group and direct chats by chat id and
// returns each bucket ordered by chat name, descending. Message order within a
// chat is preserved.
func Partition(messages []domain.Message, names map[string]string) (groups, direct []ChatTranscript) {
	groupByName := map[string][]domain.Message{}
	directByName := map[string][]domain.Message{}

	for _, m := range messages {
		name := chatName(m.ChatID, names)
		if domain.IsGroupChat(m.ChatID) {
			groupByName[name] = append(groupByName[name], m)
		} else {
			directByName[name] = append(directByName[name], m)
		}
	}

	return sortedDescending(groupByName), sortedDescending(directByName)
}

func chatName(chatID string, names map[string]string) string {
	if name := names[chatID]; name != "" {
		return name
	}
	if chatID != "" {
		return chatID
	}
	return unknownChat
}

func sortedDescending(byName map[string][]domain.Message) []ChatTranscript {
	out := make([]ChatTranscript, 0, len(byName))
	for name, msgs := range byName {
		out = append(out, ChatTranscript{Name: name, Messages: msgs})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name > out[j].Name })
	return out
}

// BuildPrompt renders the generation prompt. Times are shown in loc.
func BuildPrompt(groups, direct []ChatTranscript, loc *time.Location) string {
	var b strings.Builder
	b.WriteString(promptInstructions)

	if len(groups) > 0 {
		b.WriteString(groupSection)
		b.WriteString("\n")
		writeChats(&b, groups, "GROUP NAME", loc)
	}

	if len(direct) > 0 {
		if len(groups) > 0 {
			b.WriteString("\n")
		}
		b.WriteString(privateSection)
		b.WriteString("\n")
		writeChats(&b, direct, "CHAT WITH", loc)
	}

	return b.String()
}

func writeChats(b *strings.Builder, chats []ChatTranscript, label string, loc *time.Location) {
	for i, chat := range chats {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(b, "\n[%s: %s]\nMESSAGES:\n", label, chat.Name)
		for _, m := range chat.Messages {
			fmt.Fprintf(b, "(%s) %s: %s\n", m.Timestamp.In(loc).Format("15:04"), m.Sender, m.Content)
		}
	}
}

// FormatDelivery wraps a digest in the message sent to the chat.
func FormatDelivery(digest string, messageCount int) string {
	return fmt.Sprintf("🌟 *Daily AI Summary*\n\n%s\n\n_Processed %d messages._", digest, messageCount)
}
