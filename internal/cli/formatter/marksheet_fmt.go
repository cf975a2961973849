package formatter

import (
	"fmt"
	"strings"
	"time"

	"github.com/JeevithaAnandhan/marksheetpro/internal/domain"
)

// FormatTypes renders the marksheet type catalog.
func FormatTypes(catalog []domain.MarksheetTypeDescriptor) string {
	rows := make([][]string, 0, len(catalog))
	for _, d := range catalog {
		rows = append(rows, []string{
			TypeStyle(d.ID).Render(d.Icon + " " + string(d.ID)),
			Bold(d.Name),
			Dim(d.Description),
		})
	}
	return RenderTable([]Column{col("TYPE"), col("NAME"), col("DESCRIPTION")}, rows)
}

// FormatHistory renders processing history entries. fetchedAt, when set, is
// shown as a footer for cached listings.
func FormatHistory(entries []domain.HistoryEntry, fetchedAt *time.Time, now time.Time) string {
	if len(entries) == 0 {
		return Dim("No processing history yet.") + "\n"
	}
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		download := Dim("--")
		if e.Downloadable() {
			download = StyleBlue.Render(e.ProcessedFilename)
		}
		rows = append(rows, []string{
			e.Filename,
			TypeBadge(e.MarksheetType),
			Count(e.RecordsExtracted),
			Bytes(e.FileSize),
			HumanTimestamp(e.Date, now),
			download,
		})
	}
	out := RenderTable([]Column{col("FILE"), col("TYPE"), numCol("RECORDS"), numCol("SIZE"), col("DATE"), col("DOWNLOAD")}, rows)
	if fetchedAt != nil {
		out += Dim(fmt.Sprintf("cached %s", HumanTimestamp(*fetchedAt, now))) + "\n"
	}
	return out
}

// FormatAttempts renders the local submission log.
func FormatAttempts(attempts []*domain.SubmissionAttempt, now time.Time) string {
	if len(attempts) == 0 {
		return Dim("No submissions recorded.") + "\n"
	}
	rows := make([][]string, 0, len(attempts))
	for _, a := range attempts {
		detail := a.Message
		if a.Outcome == domain.OutcomeSucceeded {
			detail = fmt.Sprintf("%s records → %s", Count(a.RecordsCount), a.DownloadHandle)
		}
		rows = append(rows, []string{
			ShortID(a.ID),
			HumanTimestamp(a.StartedAt, now),
			TypeBadge(string(a.MarksheetType)),
			a.Filename,
			Bytes(a.FileSize),
			OutcomePill(a.Outcome),
			detail,
		})
	}
	return RenderTable([]Column{col("ID"), col("STARTED"), col("TYPE"), col("FILE"), numCol("SIZE"), col("OUTCOME"), col("DETAIL")}, rows)
}

// FormatProcessed renders one successful upload.
func FormatProcessed(file *domain.FileHandle, records int, ref, savedPath string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s %s\n", StyleGreen.Render("✔"), Bold(file.Name), Dim("("+Bytes(file.Size)+")"))
	fmt.Fprintf(&b, "  Extracted %s records\n", Bold(Count(records)))
	fmt.Fprintf(&b, "  Download: %s\n", StyleBlue.Render(ref))
	if savedPath != "" {
		fmt.Fprintf(&b, "  Saved to %s\n", savedPath)
	}
	return b.String()
}

// FormatFailed renders one failed upload.
func FormatFailed(name, message string) string {
	return fmt.Sprintf("%s %s %s\n", StyleRed.Render("✖"), Bold(name), StyleRed.Render(message))
}

// FormatUser renders the logged-in account.
func FormatUser(u domain.User) string {
	lines := []string{Bold(u.DisplayName())}
	if u.Username != "" && u.Username != u.DisplayName() {
		lines = append(lines, Dim("@"+u.Username))
	}
	if u.Email != "" {
		lines = append(lines, Dim(u.Email))
	}
	return RenderCard("Signed in", lines...)
}
