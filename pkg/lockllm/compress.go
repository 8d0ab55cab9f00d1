package lockllm

import "context"

// CompressedText is the outcome of a local compression pass over scan input.
type CompressedText struct {
	// Text is the compressed input actually submitted for scanning.
	Text string

	OriginalChars   int
	CompressedChars int

	// Ratio is CompressedChars / OriginalChars.
	Ratio float64
}

// Compressor compresses scan input locally before it is sent. The gateway
// compresses server-side when the compression options are set; a local
// Compressor saves the upload bytes as well. Implementations must honor the
// requested method and, when rate is non-nil, the target ratio.
type Compressor interface {
	Compress(ctx context.Context, method CompressionMethod, rate *float64, text string) (*CompressedText, error)
}

// compress runs the configured compressor over input when the merged options
// ask for compression. A failed compression degrades to the original input;
// scanning proceeds either way.
func (c *Client) compress(ctx context.Context, opts *ScanOptions, input string) string {
	if c.compressor == nil || opts == nil || opts.Compression == nil {
		return input
	}

	ct, err := c.compressor.Compress(ctx, *opts.Compression, opts.CompressionRate, input)
	if err != nil {
		c.logger.Warn("local compression failed, sending original input",
			"method", string(*opts.Compression),
			"error", err,
		)
		return input
	}
	if ct == nil || ct.Text == "" {
		return input
	}

	c.logger.Debug("input compressed locally",
		"method", string(*opts.Compression),
		"original_chars", ct.OriginalChars,
		"compressed_chars", ct.CompressedChars,
	)
	return ct.Text
}
