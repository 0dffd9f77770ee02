package main

import (
	"context"
	"embed"
	"log/slog"
	"runtime"

	"observatory/app"
	"observatory/app/logger"
	"observatory/app/settings"

	"github.com/wailsapp/wails/v2"
	"github.com/wailsapp/wails/v2/pkg/menu"
	"github.com/wailsapp/wails/v2/pkg/menu/keys"
	"github.com/wailsapp/wails/v2/pkg/options"
	"github.com/wailsapp/wails/v2/pkg/options/assetserver"
	wruntime "github.com/wailsapp/wails/v2/pkg/runtime"
)

//go:embed all:frontend/dist
var assets embed.FS

func main() {
	currentSettings := settings.GetEffectiveSettings()
	logger.Setup(currentSettings.LogLevel)

	// Create an instance of the app structure
	appInstance := app.NewAppWithSettings(currentSettings)
	settingsService := settings.NewSettingsService()
	// Saved settings are applied to the running app
	settingsService.SetChangeHandler(appInstance)

	emit := func(name string) func(_ *menu.CallbackData) {
		return func(_ *menu.CallbackData) {
			if appInstance.Ctx() != nil {
				wruntime.EventsEmit(appInstance.Ctx(), name)
			}
		}
	}

	AppMenu := menu.NewMenu()
	if runtime.GOOS == "darwin" {
		AppMenu.Append(menu.AppMenu())
	}

	FileMenu := AppMenu.AddSubmenu("File")
	FileMenu.AddText("Open Export", keys.CmdOrCtrl("o"), emit("menu:openExport"))
	FileMenu.AddText("Open Export Directory", keys.Combo("o", keys.CmdOrCtrlKey, keys.ShiftKey), emit("menu:openDirectory"))
	FileMenu.AddSeparator()
	FileMenu.AddText("Copy Page", keys.Combo("c", keys.CmdOrCtrlKey, keys.ShiftKey), emit("menu:copyPage"))
	FileMenu.AddText("Export Table", keys.CmdOrCtrl("e"), emit("menu:exportTable"))
	FileMenu.AddSeparator()
	FileMenu.AddText("Settings", keys.CmdOrCtrl(","), emit("menu:settings"))

	StoriesMenu := AppMenu.AddSubmenu("Stories")
	StoriesMenu.AddText("Overview", keys.CmdOrCtrl("0"), emit("menu:overview"))
	StoriesMenu.AddSeparator()
	for _, s := range appInstance.ListStories() {
		StoriesMenu.AddText(s.Title, nil, emit("menu:story:"+s.ID))
	}

	ViewMenu := AppMenu.AddSubmenu("View")
	ViewMenu.AddText("Refresh", keys.CmdOrCtrl("r"), emit("menu:refresh"))
	ViewMenu.AddText("Toggle Histogram", keys.CmdOrCtrl("h"), emit("menu:toggleHistogram"))
	ViewMenu.AddText("Toggle Console", keys.CmdOrCtrl("`"), emit("menu:toggleConsole"))
	ViewMenu.AddSeparator()
	ViewMenu.AddText("Toggle Cache Indicator", nil, emit("menu:toggleCacheIndicator"))

	HelpMenu := AppMenu.AddSubmenu("Help")
	HelpMenu.AddText("Shortcuts", nil, emit("menu:shortcuts"))
	HelpMenu.AddSeparator()
	HelpMenu.AddText("About", nil, emit("menu:about"))

	width, height := currentSettings.WindowWidth, currentSettings.WindowHeight
	if width < 400 || height < 300 {
		width, height = 1280, 800
	}

	// Create application with options
	err := wails.Run(&options.App{
		Title:  "Observatory",
		Width:  width,
		Height: height,
		Menu:   AppMenu,
		// Window sizing options for ultrawide monitor support
		MinWidth:  400,
		MinHeight: 300,
		MaxWidth:  7680,
		MaxHeight: 4320,
		AssetServer: &assetserver.Options{
			Assets: assets,
		},
		BackgroundColour: &options.RGBA{R: 17, G: 24, B: 39, A: 1},
		OnStartup: func(ctx context.Context) {
			appInstance.Startup(ctx)
			settingsService.Startup(ctx)
			// Ensure instance ID is generated on first startup
			if _, err := settingsService.EnsureInstanceID(); err != nil {
				slog.Warn("failed to generate instance ID", "error", err)
			}
		},
		OnBeforeClose: func(ctx context.Context) bool {
			w, h := wruntime.WindowGetSize(ctx)
			if err := settingsService.SaveWindowSize(w, h); err != nil {
				slog.Warn("failed to save window size", "error", err)
			}
			return false
		},
		Bind: []interface{}{
			appInstance,
			settingsService,
		},
	})

	if err != nil {
		slog.Error("application failed", "error", err)
	}
}
