package domain

import (
	"sort"
	"time"
)

// VoiceSession is one ongoing voice-channel connection.
type VoiceSession struct {
	User    UserID
	Channel string
	Since   time.Time
}

// VoiceTotal is the accumulated connected duration of one user.
type VoiceTotal struct {
	User    UserID
	Seconds int64
}

func (v VoiceTotal) Duration() time.Duration {
	return time.Duration(v.Seconds) * time.Second
}

// TopVoice orders totals by descending duration, ties broken by user id.
func TopVoice(totals []VoiceTotal, n int) []VoiceTotal {
	sort.Slice(totals, func(i, j int) bool {
		if totals[i].Seconds != totals[j].Seconds {
			return totals[i].Seconds > totals[j].Seconds
		}
		return totals[i].User < totals[j].User
	})
	if n > 0 && len(totals) > n {
		totals = totals[:n]
	}
	return totals
}
