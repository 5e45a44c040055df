// Command gmaps-scraper collects new businesses from Google Maps searches
// and appends them to a master table and one table per search.
//
// Usage:
//
//	gmaps-scraper -s "dentists in Austin TX" -t 50
//	gmaps-scraper --input searches.txt
package main

func main() {
	Execute()
}
