//
// Tencent is pleased to support the open source community by making trpc-genmedia-go available.
//
// Copyright (C) 2026 Tencent.  All rights reserved.
//
// trpc-genmedia-go is licensed under the Apache License Version 2.0.
//
//

// genmedia is the command line front end of the generation dispatcher: one
// subcommand per content category, a provider flag where several providers
// serve the same category, and option flags mirroring each provider's
// documented parameters. Only explicitly set flags reach the option table, so
// provider defaults always come from one place.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"trpc.group/trpc-go/trpc-genmedia-go/artifact"
	"trpc.group/trpc-go/trpc-genmedia-go/artifact/cos"
	"trpc.group/trpc-go/trpc-genmedia-go/config"
	"trpc.group/trpc-go/trpc-genmedia-go/internal/poll"
	"trpc.group/trpc-go/trpc-genmedia-go/log"
	"trpc.group/trpc-go/trpc-genmedia-go/media"
	"trpc.group/trpc-go/trpc-genmedia-go/media/provider"
	"trpc.group/trpc-go/trpc-genmedia-go/runner"
)

func main() {
	app := &cli.Command{
		Name:  "genmedia",
		Usage: "generate images, video, audio, speech, music and 3D models through provider APIs",
		Commands: []*cli.Command{
			imageCommand(),
			videoCommand(),
			speechCommand(),
			soundCommand(),
			musicCommand(),
			model3DCommand(),
			voiceCommand(),
		},
	}
	if err := app.Run(context.Background(), os.Args); err != nil {
		log.Errorf("%v", err)
		os.Exit(1)
	}
}

// optFlag binds one CLI flag to one option table key.
type optFlag struct {
	flag string
	key  string
	kind media.FieldKind
}

// collectOptions copies explicitly set flags into an option map. Unset flags
// stay absent so provider defaults are filled by validation, not the CLI.
func collectOptions(cmd *cli.Command, flags []optFlag) media.Options {
	opts := media.Options{}
	for _, f := range flags {
		if !cmd.IsSet(f.flag) {
			continue
		}
		switch f.kind {
		case media.KindString:
			opts[f.key] = cmd.String(f.flag)
		case media.KindInt:
			opts[f.key] = int(cmd.Int(f.flag))
		case media.KindFloat:
			opts[f.key] = cmd.Float(f.flag)
		case media.KindBool:
			opts[f.key] = cmd.Bool(f.flag)
		}
	}
	return opts
}

// dispatch loads the configuration, builds the provider generator and runs
// the request through the shared dispatcher. fanOut > 1 repeats the request
// for providers without native multi-output support.
func dispatch(ctx context.Context, cmd *cli.Command, providerName string, req *media.Request, fanOut int) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	gen, err := provider.Generator(ctx, providerName, cfg)
	if err != nil {
		return err
	}
	req.Capability = gen.Capability()

	var writerOpts []artifact.WriterOption
	if cfg.COS.Enabled {
		mirror, err := cos.NewMirror(cfg.COS.BucketURL,
			cos.WithPrefix(cfg.COS.Prefix),
			cos.WithSecretID(cfg.COS.SecretID),
			cos.WithSecretKey(cfg.COS.SecretKey))
		if err != nil {
			return err
		}
		writerOpts = append(writerOpts, artifact.WithMirror(mirror))
	}

	r := runner.New(
		runner.WithWriter(artifact.NewWriter(writerOpts...)),
		runner.WithPollConfig(poll.Config{
			Interval:    cfg.Poll.Interval,
			Timeout:     cfg.Poll.Timeout,
			MaxFailures: cfg.Poll.MaxFailures,
		}),
	)
	outcome, err := r.RunN(ctx, gen, req, cmd.String("output"), fanOut)
	if err != nil {
		return err
	}
	if outcome.Detail != "" {
		fmt.Println(outcome.Detail)
	}
	for _, path := range outcome.Paths {
		fmt.Printf("saved: %s\n", path)
	}
	return nil
}

func outputFlag() cli.Flag {
	return &cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "output file path"}
}

func inputsFlag(usage string) cli.Flag {
	return &cli.StringSliceFlag{Name: "input", Aliases: []string{"i"}, Usage: usage}
}

func imageCommand() *cli.Command {
	return &cli.Command{
		Name:      "image",
		Usage:     "generate or edit an image",
		ArgsUsage: "PROMPT",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "provider", Value: "gemini", Usage: "gemini or gpt-image"},
			inputsFlag("input image paths"),
			outputFlag(),
			&cli.StringFlag{Name: "aspect-ratio", Aliases: []string{"a"}, Usage: "aspect ratio (gemini)"},
			&cli.StringFlag{Name: "resolution", Aliases: []string{"r"}, Usage: "resolution 1K/2K/4K (gemini)"},
			&cli.StringFlag{Name: "model", Aliases: []string{"m"}, Usage: "model name (gpt-image)"},
			&cli.StringFlag{Name: "size", Usage: "output size (gpt-image)"},
			&cli.StringFlag{Name: "quality", Usage: "image quality (gpt-image)"},
			&cli.StringFlag{Name: "format", Usage: "output format (gpt-image)"},
			&cli.StringFlag{Name: "background", Usage: "background type (gpt-image)"},
			&cli.IntFlag{Name: "n", Value: 1, Usage: "number of images"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			providerName := cmd.String("provider")
			req := &media.Request{
				Prompt:     cmd.Args().First(),
				InputPaths: cmd.StringSlice("input"),
				Options: collectOptions(cmd, []optFlag{
					{"aspect-ratio", "aspect_ratio", media.KindString},
					{"resolution", "resolution", media.KindString},
					{"model", "model", media.KindString},
					{"size", "size", media.KindString},
					{"quality", "quality", media.KindString},
					{"format", "format", media.KindString},
					{"background", "background", media.KindString},
					{"n", "n", media.KindInt},
				}),
			}
			fanOut := 1
			// Gemini has no native n support; fan the request out instead.
			if providerName == "gemini" && req.Options.Int("n") > 1 {
				fanOut = req.Options.Int("n")
				delete(req.Options, "n")
			}
			return dispatch(ctx, cmd, providerName, req, fanOut)
		},
	}
}

func videoCommand() *cli.Command {
	return &cli.Command{
		Name:      "video",
		Usage:     "generate a video",
		ArgsUsage: "PROMPT",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "provider", Value: "veo", Usage: "veo or sora"},
			inputsFlag("input image path"),
			outputFlag(),
			&cli.StringFlag{Name: "model", Aliases: []string{"m"}, Usage: "model name"},
			&cli.StringFlag{Name: "aspect-ratio", Aliases: []string{"a"}, Usage: "aspect ratio (veo)"},
			&cli.IntFlag{Name: "duration", Aliases: []string{"d"}, Usage: "duration in seconds"},
			&cli.StringFlag{Name: "resolution", Aliases: []string{"r"}, Usage: "resolution (veo)"},
			&cli.StringFlag{Name: "size", Usage: "frame size (sora)"},
			&cli.StringFlag{Name: "negative-prompt", Aliases: []string{"n"}, Usage: "content to avoid (veo)"},
			&cli.IntFlag{Name: "seed", Usage: "seed for reproducibility (veo)"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			req := &media.Request{
				Prompt:     cmd.Args().First(),
				InputPaths: cmd.StringSlice("input"),
				Options: collectOptions(cmd, []optFlag{
					{"model", "model", media.KindString},
					{"aspect-ratio", "aspect_ratio", media.KindString},
					{"duration", "duration", media.KindInt},
					{"resolution", "resolution", media.KindString},
					{"size", "size", media.KindString},
					{"negative-prompt", "negative_prompt", media.KindString},
					{"seed", "seed", media.KindInt},
				}),
			}
			return dispatch(ctx, cmd, cmd.String("provider"), req, 1)
		},
	}
}

func speechCommand() *cli.Command {
	return &cli.Command{
		Name:      "speech",
		Usage:     "synthesize speech from text",
		ArgsUsage: "TEXT",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "provider", Value: "elevenlabs-tts", Usage: "elevenlabs-tts or dashscope-tts"},
			outputFlag(),
			&cli.StringFlag{Name: "model", Aliases: []string{"m"}, Usage: "model name"},
			&cli.StringFlag{Name: "voice", Aliases: []string{"v"}, Usage: "voice ID or name"},
			&cli.StringFlag{Name: "voice-search", Usage: "free-text voice search (elevenlabs)"},
			&cli.StringFlag{Name: "format", Aliases: []string{"f"}, Usage: "output audio format"},
			&cli.FloatFlag{Name: "stability", Usage: "voice stability 0-1 (elevenlabs)"},
			&cli.FloatFlag{Name: "similarity", Usage: "voice similarity 0-1 (elevenlabs)"},
			&cli.FloatFlag{Name: "speed", Usage: "speech speed"},
			&cli.IntFlag{Name: "sample-rate", Usage: "sample rate in Hz (dashscope)"},
			&cli.IntFlag{Name: "volume", Usage: "volume 0-100 (dashscope)"},
			&cli.FloatFlag{Name: "pitch", Usage: "pitch 0.5-2.0 (dashscope)"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			req := &media.Request{
				Prompt: cmd.Args().First(),
				Options: collectOptions(cmd, []optFlag{
					{"model", "model", media.KindString},
					{"voice", "voice", media.KindString},
					{"voice-search", "voice_search", media.KindString},
					{"format", "format", media.KindString},
					{"stability", "stability", media.KindFloat},
					{"similarity", "similarity", media.KindFloat},
					{"speed", "speed", media.KindFloat},
					{"sample-rate", "sample_rate", media.KindInt},
					{"volume", "volume", media.KindInt},
					{"pitch", "pitch", media.KindFloat},
				}),
			}
			return dispatch(ctx, cmd, cmd.String("provider"), req, 1)
		},
	}
}

func soundCommand() *cli.Command {
	return &cli.Command{
		Name:      "sound",
		Usage:     "generate a sound effect",
		ArgsUsage: "DESCRIPTION",
		Flags: []cli.Flag{
			outputFlag(),
			&cli.StringFlag{Name: "model", Aliases: []string{"m"}, Usage: "model name"},
			&cli.FloatFlag{Name: "duration", Aliases: []string{"d"}, Usage: "duration in seconds (0.5-30)"},
			&cli.FloatFlag{Name: "prompt-influence", Usage: "prompt influence 0-1"},
			&cli.BoolFlag{Name: "loop", Usage: "generate a seamless loop"},
			&cli.StringFlag{Name: "format", Aliases: []string{"f"}, Usage: "output audio format"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			req := &media.Request{
				Prompt: cmd.Args().First(),
				Options: collectOptions(cmd, []optFlag{
					{"model", "model", media.KindString},
					{"duration", "duration", media.KindFloat},
					{"prompt-influence", "prompt_influence", media.KindFloat},
					{"loop", "loop", media.KindBool},
					{"format", "format", media.KindString},
				}),
			}
			return dispatch(ctx, cmd, "elevenlabs-sfx", req, 1)
		},
	}
}

func musicCommand() *cli.Command {
	return &cli.Command{
		Name:      "music",
		Usage:     "compose music from a description",
		ArgsUsage: "DESCRIPTION",
		Flags: []cli.Flag{
			outputFlag(),
			&cli.StringFlag{Name: "model", Aliases: []string{"m"}, Usage: "model name"},
			&cli.IntFlag{Name: "duration", Aliases: []string{"d"}, Usage: "duration in seconds (10-300)"},
			&cli.BoolFlag{Name: "instrumental", Aliases: []string{"i"}, Usage: "force instrumental"},
			&cli.StringFlag{Name: "format", Aliases: []string{"f"}, Usage: "output audio format"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			req := &media.Request{
				Prompt: cmd.Args().First(),
				Options: collectOptions(cmd, []optFlag{
					{"model", "model", media.KindString},
					{"duration", "duration", media.KindInt},
					{"instrumental", "instrumental", media.KindBool},
					{"format", "format", media.KindString},
				}),
			}
			return dispatch(ctx, cmd, "elevenlabs-music", req, 1)
		},
	}
}

func model3DCommand() *cli.Command {
	return &cli.Command{
		Name:      "3d",
		Usage:     "generate a 3D model from text or images",
		ArgsUsage: "[PROMPT]",
		Flags: []cli.Flag{
			inputsFlag("input images; several for multiview (front, back, left, right)"),
			outputFlag(),
			&cli.StringFlag{Name: "version", Aliases: []string{"v"}, Usage: "model version"},
			&cli.StringFlag{Name: "texture-quality", Usage: "texture quality standard/detailed"},
			&cli.StringFlag{Name: "geometry-quality", Usage: "geometry quality standard/detailed"},
			&cli.IntFlag{Name: "face-limit", Usage: "maximum face count"},
			&cli.BoolFlag{Name: "no-texture", Usage: "skip texture generation"},
			&cli.BoolFlag{Name: "no-pbr", Usage: "skip PBR material generation"},
			&cli.StringFlag{Name: "format", Aliases: []string{"f"}, Usage: "conversion format (GLTF/USDZ/FBX/OBJ/STL/3MF)"},
			&cli.StringFlag{Name: "negative-prompt", Aliases: []string{"n"}, Usage: "content to avoid (text mode)"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			opts := collectOptions(cmd, []optFlag{
				{"version", "version", media.KindString},
				{"texture-quality", "texture_quality", media.KindString},
				{"geometry-quality", "geometry_quality", media.KindString},
				{"face-limit", "face_limit", media.KindInt},
				{"format", "format", media.KindString},
				{"negative-prompt", "negative_prompt", media.KindString},
			})
			if cmd.Bool("no-texture") {
				opts["texture"] = false
			}
			if cmd.Bool("no-pbr") {
				opts["pbr"] = false
			}
			req := &media.Request{
				Prompt:     cmd.Args().First(),
				InputPaths: cmd.StringSlice("input"),
				Options:    opts,
			}
			return dispatch(ctx, cmd, "tripo", req, 1)
		},
	}
}

func voiceCommand() *cli.Command {
	return &cli.Command{
		Name:      "voice",
		Usage:     "manage custom voices: clone from audio or design from a description",
		ArgsUsage: "[DESCRIPTION]",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "provider", Value: "dashscope-voice-clone",
				Usage: "dashscope-voice-clone or dashscope-voice-design"},
			inputsFlag("reference audio (clone create)"),
			outputFlag(),
			&cli.StringFlag{Name: "action", Aliases: []string{"a"}, Usage: "create, list, query or delete"},
			&cli.StringFlag{Name: "name", Usage: "preferred voice name"},
			&cli.StringFlag{Name: "target-model", Usage: "target synthesis model"},
			&cli.StringFlag{Name: "language", Aliases: []string{"l"}, Usage: "voice language"},
			&cli.StringFlag{Name: "text", Usage: "transcript of the reference audio (clone)"},
			&cli.StringFlag{Name: "preview-text", Usage: "preview text (design create)"},
			&cli.IntFlag{Name: "sample-rate", Usage: "preview sample rate (design)"},
			&cli.StringFlag{Name: "format", Aliases: []string{"f"}, Usage: "preview audio format (design)"},
			&cli.StringFlag{Name: "voice", Aliases: []string{"v"}, Usage: "voice ID (query/delete)"},
			&cli.IntFlag{Name: "page-index", Usage: "list page index"},
			&cli.IntFlag{Name: "page-size", Usage: "list page size"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			req := &media.Request{
				Prompt:     cmd.Args().First(),
				InputPaths: cmd.StringSlice("input"),
				Options: collectOptions(cmd, []optFlag{
					{"action", "action", media.KindString},
					{"name", "name", media.KindString},
					{"target-model", "target_model", media.KindString},
					{"language", "language", media.KindString},
					{"text", "text", media.KindString},
					{"preview-text", "preview_text", media.KindString},
					{"sample-rate", "sample_rate", media.KindInt},
					{"format", "format", media.KindString},
					{"voice", "voice", media.KindString},
					{"page-index", "page_index", media.KindInt},
					{"page-size", "page_size", media.KindInt},
				}),
			}
			return dispatch(ctx, cmd, cmd.String("provider"), req, 1)
		},
	}
}
