// Package fun holds the small commands that need no external service.
package fun

import (
	"bufio"
	"math/rand/v2"
	"os"
	"strings"

	apperrors "github.com/pscheid92/nano/internal/errors"
)

const (
	Pong             = "Pong!"
	SayFailure       = "Couldn't say nothin' :("
	TopicFailure     = "Something went wrong..."
	maxTopicFileSize = 1 << 20
)

// Answers are the classic magic 8-ball replies.
var Answers = [20]string{
	"It is certain.",
	"It is decidedly so.",
	"Without a doubt.",
	"Yes, definitely.",
	"You may rely on it.",
	"As I see it, yes.",
	"Most likely.",
	"Outlook good.",
	"Yes.",
	"Signs point to yes.",
	"Reply hazy, try again...",
	"Ask again later...",
	"Better not tell you now!",
	"Cannot predict now...",
	"Concentrate and ask again.",
	"Don't count on it.",
	"My reply is no.",
	"My sources say no.",
	"Outlook not so good.",
	"Very doubtful.",
}

type Service struct {
	topicsPath string
	intn       func(n int) int
}

func NewService(topicsPath string) *Service {
	return &Service{topicsPath: topicsPath, intn: rand.IntN}
}

// Ask answers a yes-or-no question. Slash commands don't show the invoking
// message, so quoted replies repeat the question first.
func (s *Service) Ask(question string, quote bool) string {
	answer := Answers[s.intn(len(Answers))]
	if !quote {
		return answer
	}
	return "> " + strings.ReplaceAll(strings.TrimSpace(question), "\n", "\n> ") + "\n\n" + answer
}

// Say echoes message. Mentions are neutralised by the sender, not here.
func Say(message string) (string, error) {
	if strings.TrimSpace(message) == "" {
		return "", apperrors.ValidationError(SayFailure)
	}
	return message, nil
}

// Topic picks a random non-empty line from the topics file.
func (s *Service) Topic() (string, error) {
	f, err := os.Open(s.topicsPath)
	if err != nil {
		return "", apperrors.InternalError("failed to open topics", err).WithField("path", s.topicsPath)
	}
	defer f.Close()

	var topics []string
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 4096), maxTopicFileSize)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			topics = append(topics, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return "", apperrors.InternalError("failed to read topics", err).WithField("path", s.topicsPath)
	}
	if len(topics) == 0 {
		return "", apperrors.InternalError("no topics", nil).WithField("path", s.topicsPath)
	}
	return topics[s.intn(len(topics))], nil
}
