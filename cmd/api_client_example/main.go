package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
)

func main() {
	fmt.Println("Weather Dashboard API Client Example")
	fmt.Println("====================================")

	// Base URL for the API
	baseURL := "http://localhost:8080"

	// Search for a city
	query := "London"
	if len(os.Args) > 1 {
		query = os.Args[1]
	}

	fmt.Printf("\nSearching for %q...\n", query)
	searchURL := fmt.Sprintf("%s/api/locations/search?q=%s", baseURL, url.QueryEscape(query))
	searchResp, err := http.Get(searchURL)
	if err != nil {
		fmt.Printf("Error searching locations: %v\n", err)
		os.Exit(1)
	}
	defer searchResp.Body.Close()

	var searchEnvelope struct {
		Success bool `json:"success"`
		Data    struct {
			Results []struct {
				Name    string  `json:"name"`
				Country string  `json:"country"`
				Lat     float64 `json:"lat"`
				Lon     float64 `json:"lon"`
			} `json:"results"`
		} `json:"data"`
		Error string `json:"error"`
	}
	searchBody, _ := io.ReadAll(searchResp.Body)
	json.Unmarshal(searchBody, &searchEnvelope)

	if !searchEnvelope.Success {
		fmt.Printf("Search failed: %s\n", searchEnvelope.Error)
		os.Exit(1)
	}
	if len(searchEnvelope.Data.Results) == 0 {
		fmt.Println("No matches found. Try another query.")
		return
	}

	match := searchEnvelope.Data.Results[0]
	fmt.Printf("Best match: %s, %s (%.4f, %.4f)\n", match.Name, match.Country, match.Lat, match.Lon)

	// Fetch the assembled dashboard page for the match
	homeURL := fmt.Sprintf("%s/api/dashboard/home?city=%s&lat=%f&lon=%f",
		baseURL, url.QueryEscape(match.Name), match.Lat, match.Lon)
	homeResp, err := http.Get(homeURL)
	if err != nil {
		fmt.Printf("Error fetching dashboard: %v\n", err)
		os.Exit(1)
	}
	defer homeResp.Body.Close()

	homeBody, _ := io.ReadAll(homeResp.Body)

	// Parse the JSON for pretty printing
	var homeData map[string]interface{}
	json.Unmarshal(homeBody, &homeData)

	prettyJSON, _ := json.MarshalIndent(homeData, "", "  ")
	fmt.Printf("\nDashboard for %s:\n%s\n", match.Name, string(prettyJSON))
}
