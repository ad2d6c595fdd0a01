package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// BaseURL is the Firebase management API root. Overridable through
// configuration before any clients are built.
var BaseURL = "https://firebase.googleapis.com"

const projectsPageSize = 100

// Project is one Firebase project visible to the account.
type Project struct {
	ProjectID     string `json:"projectId"`
	ProjectNumber string `json:"projectNumber"`
	DisplayName   string `json:"displayName"`
	State         string `json:"state"`
	Resources     struct {
		HostingSite      string `json:"hostingSite"`
		RealtimeDatabase string `json:"realtimeDatabaseInstance"`
		StorageBucket    string `json:"storageBucket"`
		LocationID       string `json:"locationId"`
	} `json:"resources"`
}

// ProjectsClient lists the projects an account can see.
type ProjectsClient struct {
	exec    Doer
	baseURL string
}

// NewProjectsClient returns a ProjectsClient issuing calls through exec.
func NewProjectsClient(exec Doer) *ProjectsClient {
	return &ProjectsClient{exec: exec, baseURL: BaseURL}
}

// ListProjects fetches every page of the account's projects. Transient 503s
// are retried by the executor; any other non-200 fails the listing.
func (c *ProjectsClient) ListProjects(ctx context.Context) ([]Project, error) {
	var projects []Project
	pageToken := ""

	for {
		query := url.Values{"pageSize": {strconv.Itoa(projectsPageSize)}}
		if pageToken != "" {
			query.Set("pageToken", pageToken)
		}

		resp, err := c.exec.Do(ctx, Request{
			Method:  http.MethodGet,
			URL:     c.baseURL + "/v1beta1/projects",
			Query:   query,
			RetryOn: []int{http.StatusServiceUnavailable},
		})
		if err != nil {
			return nil, fmt.Errorf("listing projects: %w", err)
		}

		page, next, err := decodeProjectsPage(resp)
		if err != nil {
			return nil, err
		}

		projects = append(projects, page...)
		if next == "" {
			return projects, nil
		}
		pageToken = next
	}
}

func decodeProjectsPage(resp *http.Response) ([]Project, string, error) {
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, "", fmt.Errorf("projects API returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var page struct {
		Results       []Project `json:"results"`
		NextPageToken string    `json:"nextPageToken"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, "", fmt.Errorf("decoding projects page: %w", err)
	}
	return page.Results, page.NextPageToken, nil
}
