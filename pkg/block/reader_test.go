package block

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// readAll drains the reader and returns copies of every block.
func readAll(t *testing.T, br *Reader) []string {
	t.Helper()
	var blocks []string
	for {
		b, err := br.Next()
		if errors.Is(err, io.EOF) {
			return blocks
		}
		require.NoError(t, err)
		blocks = append(blocks, string(b))
	}
}

func TestReader_SmallInputSingleBlock(t *testing.T) {
	br := NewReader(strings.NewReader("a\nb\nc\n"), 64, '\n')

	blocks := readAll(t, br)

	assert.Equal(t, []string{"a\nb\nc\n"}, blocks)
	assert.True(t, br.Final())
}

func TestReader_NeverSplitsLines(t *testing.T) {
	input := "alpha\nbeta\ngamma\ndelta\nepsilon\n"
	br := NewReader(strings.NewReader(input), 12, '\n')

	blocks := readAll(t, br)

	assert.Equal(t, input, strings.Join(blocks, ""), "blocks concatenate to the input")
	for _, b := range blocks {
		assert.LessOrEqual(t, len(b), 12)
		assert.True(t, strings.HasSuffix(b, "\n"), "block %q ends on a terminator", b)
	}
	assert.Equal(t, []string{"alpha\nbeta\n", "gamma\ndelta\n", "epsilon\n"}, blocks)
}

func TestReader_TrailingFragment(t *testing.T) {
	br := NewReader(strings.NewReader("one\ntwo\nthr"), 8, '\n')

	blocks := readAll(t, br)

	assert.Equal(t, []string{"one\ntwo\n", "thr"}, blocks)
}

func TestReader_ExactFillAtEOF(t *testing.T) {
	br := NewReader(strings.NewReader("abc\nde\n"), 7, '\n')

	b, err := br.Next()
	require.NoError(t, err)
	assert.Equal(t, "abc\nde\n", string(b))

	_, err = br.Next()
	assert.ErrorIs(t, err, io.EOF)
	assert.True(t, br.Final())
}

func TestReader_EmptyInput(t *testing.T) {
	br := NewReader(strings.NewReader(""), 16, '\n')

	_, err := br.Next()

	assert.ErrorIs(t, err, io.EOF)
	_, err = br.Next()
	assert.ErrorIs(t, err, io.EOF, "exhausted reader stays exhausted")
}

func TestReader_Offsets(t *testing.T) {
	br := NewReader(strings.NewReader("aaaa\nbbbb\ncccc\n"), 6, '\n')

	var offsets []int64
	for {
		_, err := br.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		require.NoError(t, err)
		offsets = append(offsets, br.Offset())
	}

	assert.Equal(t, []int64{0, 5, 10}, offsets)
}

func TestReader_LineTooLong(t *testing.T) {
	br := NewReader(strings.NewReader("short\nthis line is far too long\n"), 10, '\n')

	b, err := br.Next()
	require.NoError(t, err)
	assert.Equal(t, "short\n", string(b))

	_, err = br.Next()

	var tooLong *LineTooLongError
	require.ErrorAs(t, err, &tooLong)
	assert.Equal(t, int64(6), tooLong.Offset)
	assert.Equal(t, 10, tooLong.Size)
}

func TestReader_StreamError(t *testing.T) {
	boom := errors.New("disk on fire")
	r := io.MultiReader(strings.NewReader("ok\n"), iotest.ErrReader(boom))
	br := NewReader(r, 64, '\n')

	_, err := br.Next()

	var streamErr *StreamError
	require.ErrorAs(t, err, &streamErr)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, int64(3), streamErr.Offset)
}

func TestReader_ShortReads(t *testing.T) {
	var input bytes.Buffer
	for i := 0; i < 200; i++ {
		input.WriteString("line of text\n")
	}
	br := NewReader(iotest.OneByteReader(bytes.NewReader(input.Bytes())), 50, '\n')

	blocks := readAll(t, br)

	assert.Equal(t, input.String(), strings.Join(blocks, ""))
	for _, b := range blocks {
		assert.True(t, strings.HasSuffix(b, "\n"))
	}
}

func TestReader_CustomTerminator(t *testing.T) {
	br := NewReader(strings.NewReader("a;b;c;d"), 4, ';')

	blocks := readAll(t, br)

	assert.Equal(t, []string{"a;b;", "c;d"}, blocks)
}

func TestNewReader_DefaultSize(t *testing.T) {
	br := NewReader(strings.NewReader(""), 0, '\n')
	assert.Equal(t, DefaultSize, br.Size())
}
