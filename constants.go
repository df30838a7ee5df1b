package firfilter

// Channel constants
const (
	// DefaultChannels is the stereo channel count the engine is built for
	// by default.
	DefaultChannels = 2

	// maxChannels bounds the channel count a configuration may request.
	maxChannels = 64
)

// Common sample rates of the supported family.
const (
	// RateCD is the CD quality sample rate (Red Book standard).
	RateCD = 44100

	// RateDAT is the DAT/DVD sample rate.
	RateDAT = 48000

	// RateHiRes88 is the high-resolution 2x CD sample rate.
	RateHiRes88 = 88200

	// RateHiRes96 is the high-resolution 2x DAT sample rate.
	RateHiRes96 = 96000

	// RateHiRes176 is the very high resolution 4x CD sample rate.
	RateHiRes176 = 176400

	// RateHiRes192 is the very high resolution 4x DAT sample rate. It is
	// also the registry's fallback entry for unrecognized rates.
	RateHiRes192 = 192000
)

// initialRate is the rate channels are configured for at engine startup,
// before the host reports a stream format.
const initialRate = RateCD

// bytesPerSample is the size of one float32 sample, used for memory
// accounting in Info.
const bytesPerSample = 4

// stereoNames are the channel labels used for the default stereo layout.
var stereoNames = []string{"FL", "FR"}
