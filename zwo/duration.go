package zwo

import (
	"github.com/sirupsen/logrus"

	"github.com/lucasjlepore/kaiord/internal/bag"
	"github.com/lucasjlepore/kaiord/internal/logging"
	"github.com/lucasjlepore/kaiord/internal/restore"
	"github.com/lucasjlepore/kaiord/krd"
)

// fallbackSeconds is written for durations ZWO cannot express.
const fallbackSeconds = 300.0

// RestoreKaiordDuration rebuilds a duration stashed in kaiord: attributes.
// It returns nil when there is nothing to restore or the stash is invalid,
// and the caller falls back to the element's Duration.
func RestoreKaiordDuration(b bag.Bag, log logrus.FieldLogger) *krd.Duration {
	return restore.Codec{Prefix: keyPrefix, Log: log}.DecodeDuration(b)
}

// EncodeDuration returns the Duration attribute for d plus the restoration
// attributes of any lossy encoding. Distance is written as its meter value
// in the seconds attribute; conditional and repeat durations fall back to
// 300 seconds.
func EncodeDuration(d krd.Duration, log logrus.FieldLogger) bag.Bag {
	log = logging.OrDiscard(log)
	codec := restore.Codec{Prefix: keyPrefix, Log: log}
	entry := log.WithField("duration_type", d.Type)
	out := bag.Bag{}

	v, ok := d.Value()
	switch {
	case d.Type == krd.DurationOpen:
		out[attrDuration] = 0.0
		return out
	case d.Type == krd.DurationTime && ok:
		out[attrDuration] = v
		return out
	case d.Type == krd.DurationDistance && ok:
		out[attrDuration] = v
		out.Merge(codec.EncodeDuration(d))
		entry.WithField("meters", v).Warn("distance duration written as seconds")
		return out
	}

	out[attrDuration] = fallbackSeconds
	out.Merge(codec.EncodeDuration(d))
	entry.Warn("duration has no ZWO equivalent, using 300 seconds")
	return out
}

// readDuration prefers a restored duration over the element's face value.
func readDuration(b bag.Bag, key string, log logrus.FieldLogger) krd.Duration {
	if d := RestoreKaiordDuration(b, log); d != nil {
		return *d
	}
	return timeOrOpen(b, key)
}

func timeOrOpen(b bag.Bag, key string) krd.Duration {
	if v, ok := b.Number(key); ok && v > 0 {
		return krd.TimeDuration(v)
	}
	return krd.OpenDuration()
}
