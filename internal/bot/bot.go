// Package bot is the Discord front end: asset uploads into the blob store
// and cover generation through the compositor service. Users only ever see
// short human-readable messages; full errors go to the server log.
package bot

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"

	"github.com/qimenscout/covergen/internal/share"
	"github.com/qimenscout/covergen/internal/storage"
	"github.com/qimenscout/covergen/internal/teams"
	"github.com/qimenscout/covergen/internal/util"
)

const commandPrefix = "!"

type Bot struct {
	session      *discordgo.Session
	store        storage.Store
	bucket       string
	catalog      *teams.Catalog
	generatorURL string
	client       *http.Client
}

func New(token string, store storage.Store, bucket string, catalog *teams.Catalog, generatorURL string) (*Bot, error) {
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("creating discord session: %w", err)
	}
	session.Identify.Intents = discordgo.IntentsGuildMessages | discordgo.IntentMessageContent

	b := &Bot{
		session:      session,
		store:        store,
		bucket:       bucket,
		catalog:      catalog,
		generatorURL: generatorURL,
		// Cover generation can take minutes on a cold service.
		client: &http.Client{Timeout: 5 * time.Minute},
	}
	session.AddHandler(b.onMessage)
	return b, nil
}

func (b *Bot) Start() error {
	if err := b.session.Open(); err != nil {
		return fmt.Errorf("opening discord session: %w", err)
	}
	log.Info().Str("user", b.session.State.User.Username).Msg("bot logged in")
	return nil
}

func (b *Bot) Stop() error { return b.session.Close() }

func (b *Bot) onMessage(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author.Bot || !strings.HasPrefix(m.Content, commandPrefix) {
		return
	}
	args := splitArgs(strings.TrimPrefix(m.Content, commandPrefix))
	if len(args) == 0 {
		return
	}
	switch args[0] {
	case "upload_qimen":
		b.upload(s, m, "qimen", args[1:])
	case "upload_player":
		b.upload(s, m, "players", args[1:])
	case "generate_cover":
		b.generateCover(s, m, args[1:])
	}
}

// upload stores the first attached image under <kind>/<filename> and
// replies with the remote ref plus a share link (and its QR) when signing
// produced an http URL.
func (b *Bot) upload(s *discordgo.Session, m *discordgo.MessageCreate, kind string, args []string) {
	if len(args) < 1 {
		b.reply(s, m, fmt.Sprintf("❌ Usage: `!upload_%s <filename>` with an image attached.", strings.TrimSuffix(kind, "s")))
		return
	}
	if len(m.Attachments) == 0 {
		b.reply(s, m, "❌ Please attach an image to upload.")
		return
	}
	att := m.Attachments[0]
	if !strings.HasPrefix(att.ContentType, "image/") {
		b.reply(s, m, "❌ The attachment must be an image file.")
		return
	}

	content, err := util.FetchBytes(att.URL)
	if err != nil {
		log.Error().Err(err).Str("url", att.URL).Msg("attachment download failed")
		b.reply(s, m, "❌ Failed to download the attached image.")
		return
	}

	key := kind + "/" + args[0]
	handle, err := b.store.Upload(context.Background(), key, content, att.ContentType)
	if err != nil {
		log.Error().Err(err).Str("key", key).Msg("upload failed")
		b.reply(s, m, "❌ Error uploading image: "+err.Error())
		return
	}

	msg := fmt.Sprintf("✅ **Uploaded %s image**\n`%s`\n%s", kind, storage.RemoteRef(b.bucket, key), handle)
	if strings.HasPrefix(handle, "http") {
		if qr, err := share.QRPNG(handle, 400); err == nil {
			b.replyWithFile(s, m, msg, "share_qr.png", "image/png", qr)
			return
		}
	}
	b.reply(s, m, msg)
}

// generateCover validates the command, calls the compositor service and
// relays the JPEG back to the channel. Transport failures and generator
// failures are reported as distinct messages.
func (b *Bot) generateCover(s *discordgo.Session, m *discordgo.MessageCreate, args []string) {
	parsed, err := parseGenerateArgs(args)
	if err != nil {
		b.reply(s, m, "❌ "+err.Error()+"\n**Example:** `!generate_cover 2025-12-07 HOU GSW \"火旺克金形势显\" \"刺锋遇曜力难前\" 2 4`")
		return
	}
	for _, code := range []string{parsed.AwayTeam, parsed.HomeTeam} {
		if !b.catalog.Valid(code) {
			b.reply(s, m, fmt.Sprintf("❌ Unknown team code `%s`.", code))
			return
		}
	}

	b.reply(s, m, "🔄 Generating cover image... This may take a moment.")

	payload := map[string]any{
		"date":      parsed.Date,
		"away_team": parsed.AwayTeam,
		"home_team": parsed.HomeTeam,
		"title":     parsed.TitleLines,
	}
	if len(parsed.CircleCells) > 0 {
		payload["circle_cells"] = parsed.CircleCells
	}
	body, _ := json.Marshal(payload)

	resp, err := b.client.Post(b.generatorURL, "application/json", bytes.NewReader(body))
	if err != nil {
		log.Error().Err(err).Msg("cover generator unreachable")
		b.reply(s, m, "❌ **Network error calling the cover generator.** Please try again later.")
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail := readLimited(resp)
		log.Error().Int("status", resp.StatusCode).Str("body", detail).Msg("cover generator error")
		b.reply(s, m, fmt.Sprintf("❌ **Cover generator failed (status %d):**\n```%s```", resp.StatusCode, detail))
		return
	}

	var img bytes.Buffer
	if _, err := img.ReadFrom(resp.Body); err != nil {
		b.reply(s, m, "❌ **Network error receiving the generated cover.**")
		return
	}
	b.replyWithFile(s, m, "✅ **Cover generated!**", "cover_"+parsed.Date+".jpg", "image/jpeg", img.Bytes())
}

func (b *Bot) reply(s *discordgo.Session, m *discordgo.MessageCreate, content string) {
	if _, err := s.ChannelMessageSendReply(m.ChannelID, content, m.Reference()); err != nil {
		log.Error().Err(err).Msg("sending reply failed")
	}
}

func (b *Bot) replyWithFile(s *discordgo.Session, m *discordgo.MessageCreate, content, name, contentType string, data []byte) {
	_, err := s.ChannelMessageSendComplex(m.ChannelID, &discordgo.MessageSend{
		Content:   content,
		Reference: m.Reference(),
		Files: []*discordgo.File{{
			Name:        name,
			ContentType: contentType,
			Reader:      bytes.NewReader(data),
		}},
	})
	if err != nil {
		log.Error().Err(err).Msg("sending file reply failed")
	}
}

func readLimited(resp *http.Response) string {
	var buf bytes.Buffer
	_, _ = buf.ReadFrom(resp.Body)
	s := buf.String()
	if len(s) > 500 {
		s = s[:500]
	}
	return s
}
