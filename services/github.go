package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"
)

const githubGraphQLURL = "https://api.github.com/graphql"

const contributionsQuery = `
query($username: String!) {
  user(login: $username) {
    contributionsCollection {
      contributionCalendar {
        totalContributions
        weeks {
          contributionDays {
            contributionCount
            date
            color
          }
        }
      }
    }
  }
}`

// ContributionDay is one cell of the GitHub contribution calendar.
type ContributionDay struct {
	ContributionCount int    `json:"contributionCount"`
	Date              string `json:"date"`
	Color             string `json:"color"`
}

// ContributionCalendar is the calendar rendered on the portfolio home page.
type ContributionCalendar struct {
	TotalContributions int `json:"totalContributions"`
	Weeks              []struct {
		ContributionDays []ContributionDay `json:"contributionDays"`
	} `json:"weeks"`
}

type contributionsResponse struct {
	Data struct {
		User struct {
			ContributionsCollection struct {
				ContributionCalendar ContributionCalendar `json:"contributionCalendar"`
			} `json:"contributionsCollection"`
		} `json:"user"`
	} `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

// GithubService fetches the portfolio owner's contribution calendar.
//
// Requires environment variables:
//   - GITHUB_TOKEN: a token with read:user scope
//   - GITHUB_USERNAME: the login to query
type GithubService struct {
	client   *http.Client
	token    string
	username string
}

func NewGithubService() (*GithubService, error) {
	token := os.Getenv("GITHUB_TOKEN")
	if token == "" {
		return nil, fmt.Errorf("GITHUB_TOKEN is not set")
	}

	username := os.Getenv("GITHUB_USERNAME")
	if username == "" {
		return nil, fmt.Errorf("GITHUB_USERNAME is not set")
	}

	return &GithubService{
		client:   &http.Client{Timeout: 15 * time.Second},
		token:    token,
		username: username,
	}, nil
}

// Contributions runs the calendar query against the GitHub GraphQL API.
func (s *GithubService) Contributions(ctx context.Context) (*ContributionCalendar, error) {
	payload := map[string]interface{}{
		"query": contributionsQuery,
		"variables": map[string]string{
			"username": s.username,
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal graphql payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, githubGraphQLURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build graphql request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.token)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call github graphql: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("github graphql returned status %d", resp.StatusCode)
	}

	var parsed contributionsResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode github response: %w", err)
	}
	if len(parsed.Errors) > 0 {
		return nil, fmt.Errorf("github graphql error: %s", parsed.Errors[0].Message)
	}

	calendar := parsed.Data.User.ContributionsCollection.ContributionCalendar
	return &calendar, nil
}
