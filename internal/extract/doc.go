// Package extract pulls text out of catalog files so classification can look
// at content, not just names. Plain text, PDF, and XLSX formats are handled;
// everything else reports ErrUnsupportedFormat.
package extract
