// Package platform contains OS and external tooling glue: the yt-dlp
// backed fetcher, the ffmpeg media tool, playlist expansion, the
// bandwidth probe, and filesystem helpers.
package platform
