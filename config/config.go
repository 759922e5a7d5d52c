/*
 * A4091 - Configuration file
 *
 * Copyright 2024, Richard Cornwell
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in
 * all copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 */

// Package config reads the optional a4091.cfg settings file. Command
// line flags always win over values set here.
package config

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// DefaultFile is looked for in the working directory when no file is
// named on the command line.
const DefaultFile = "a4091.cfg"

// Config carries the file settings.
type Config struct {
	Burst   int    // DMA burst length in transfers
	Card    uint32 // Card index or bus address
	CardSet bool
	LogFile string
}

// Defaults returns the settings used when no file is present. The
// burst length stays at two transfers, which every backplane handles;
// longer bursts are an explicit opt-in.
func Defaults() *Config {
	return &Config{Burst: 2}
}

// Load reads the named file. A missing default file is not an error.
func Load(name string) (*Config, error) {
	cfg := Defaults()
	file, err := os.Open(name)
	if err != nil {
		if os.IsNotExist(err) && name == DefaultFile {
			return cfg, nil
		}
		return nil, err
	}
	defer file.Close()

	scan := bufio.NewScanner(file)
	lineNum := 0
	for scan.Scan() {
		lineNum++
		line := scan.Text()
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		if len(fields) != 2 {
			return nil, fmt.Errorf("%s line %d: expected keyword and value",
				name, lineNum)
		}
		keyword := strings.ToLower(fields[0])
		value := fields[1]
		switch keyword {
		case "burst":
			burst, err := strconv.Atoi(value)
			if err != nil || burst < 1 || burst > 8 {
				return nil, fmt.Errorf("%s line %d: bad burst length %q",
					name, lineNum, value)
			}
			cfg.Burst = burst
		case "card":
			card, err := strconv.ParseUint(strings.TrimPrefix(value, "0x"), 16, 32)
			if err != nil {
				return nil, fmt.Errorf("%s line %d: bad card address %q",
					name, lineNum, value)
			}
			cfg.Card = uint32(card)
			cfg.CardSet = true
		case "logfile":
			cfg.LogFile = value
		default:
			return nil, fmt.Errorf("%s line %d: unknown keyword %q",
				name, lineNum, fields[0])
		}
	}
	return cfg, scan.Err()
}
