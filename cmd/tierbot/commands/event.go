package commands

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/tiergh/tier-bot/internal/core/pipeline"
)

// loadEvent reads an event file in either of two shapes: the bot's own
// flat Event schema, or a raw GitHub webhook payload as Actions writes
// it to GITHUB_EVENT_PATH. Raw payloads fill in whatever the flat
// decode left empty.
func loadEvent(path string) (*pipeline.Event, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read event file: %w", err)
	}

	var event pipeline.Event
	if err := json.Unmarshal(data, &event); err != nil {
		return nil, fmt.Errorf("failed to parse event JSON: %w", err)
	}

	var raw map[string]interface{}
	if err := json.Unmarshal(data, &raw); err == nil {
		enrichEventFromWebhook(&event, raw)
	}

	return &event, nil
}

// enrichEventFromWebhook maps the nested webhook payload structure onto
// the flat event, without overwriting fields already set.
func enrichEventFromWebhook(event *pipeline.Event, raw map[string]interface{}) {
	if action, ok := raw["action"].(string); ok && event.Action == "" {
		event.Action = action
	}

	if repo, ok := raw["repository"].(map[string]interface{}); ok {
		if name, ok := repo["name"].(string); ok && event.Repo == "" {
			event.Repo = name
		}
		if owner, ok := repo["owner"].(map[string]interface{}); ok {
			if login, ok := owner["login"].(string); ok && event.Org == "" {
				event.Org = login
			}
		}
	}

	if comment, ok := raw["comment"].(map[string]interface{}); ok {
		event.EventType = "issue_comment"
		if body, ok := comment["body"].(string); ok && event.CommentBody == "" {
			event.CommentBody = body
		}
		if user, ok := comment["user"].(map[string]interface{}); ok {
			if login, ok := user["login"].(string); ok && event.CommentAuthor == "" {
				event.CommentAuthor = login
			}
		}
	}

	if issue, ok := raw["issue"].(map[string]interface{}); ok {
		if event.EventType == "" {
			event.EventType = "issues"
		}
		if number, ok := issue["number"].(float64); ok && event.Number == 0 {
			event.Number = int(number)
		}
		if title, ok := issue["title"].(string); ok && event.Title == "" {
			event.Title = title
		}
		if state, ok := issue["state"].(string); ok && event.State == "" {
			event.State = state
		}
		if htmlURL, ok := issue["html_url"].(string); ok && event.URL == "" {
			event.URL = htmlURL
		}
		if user, ok := issue["user"].(map[string]interface{}); ok {
			if login, ok := user["login"].(string); ok && event.Author == "" {
				event.Author = login
			}
		}
		if rawLabels, ok := issue["labels"].([]interface{}); ok && len(event.Labels) == 0 {
			for _, rl := range rawLabels {
				if labelMap, ok := rl.(map[string]interface{}); ok {
					if name, ok := labelMap["name"].(string); ok {
						event.Labels = append(event.Labels, name)
					}
				}
			}
		}
	}

	if assignee, ok := raw["assignee"].(map[string]interface{}); ok {
		if login, ok := assignee["login"].(string); ok && event.Assignee == "" {
			event.Assignee = login
		}
	}
}
