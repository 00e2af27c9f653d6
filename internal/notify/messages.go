package notify

import "fmt"

// Message texts for the pipeline stages. Each names the page URL so that a
// shared channel stays readable when several targets run.

func StartMessage(url string) string {
	return fmt.Sprintf("[crawl started] %s", url)
}

func FetchFailedMessage(url string, err error) string {
	return fmt.Sprintf("[crawl failed] could not fetch content from %s: %v", url, err)
}

func FontFallbackMessage(url string, err error) string {
	return fmt.Sprintf("[pdf warning] font setup failed for %s, using fallback font: %v", url, err)
}

func UnexpectedMessage(url string, err error) string {
	return fmt.Sprintf("[crawl failed] unexpected error while processing %s: %v", url, err)
}

func EmptyMessage(url, selector string) string {
	return fmt.Sprintf("[crawl finished] %s has no %s container; nothing was saved", url, selector)
}

// SuccessMessage reports finished artifacts. title may be empty.
func SuccessMessage(url, title string) string {
	if title == "" {
		return fmt.Sprintf("[crawl succeeded] %s: files created", url)
	}
	return fmt.Sprintf("[crawl succeeded] %s (%s): files created", url, title)
}
