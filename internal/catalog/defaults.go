package catalog

// Default returns the built-in catalog for WebView2-style captures. The
// returned value is freshly allocated; callers may not share mutations.
func Default() *Catalog {
	return &Catalog{
		Version: "2026.08",
		Flows: []Flow{
			{
				Name: "navigation",
				CreationEvents: []string{
					"CreateCoreWebView2Environment",
					"CreateCoreWebView2Controller",
				},
				KeyEvents: []string{
					"BrowserProcessStarted",
					"RendererProcessStarted",
					"NavigationStarting",
					"SourceChanged",
					"ContentLoading",
					"HistoryChanged",
					"DOMContentLoaded",
					"NavigationCompleted",
					"NavigationFailed",
					"ProcessFailed",
					"RendererUnresponsive",
					"EventDroppedNoHandler",
					"WebMessageReceived",
				},
				KeyPatterns: []string{
					`NavigationId=(\d+)`,
					`navigationId[:=]\s*(\d+)`,
					`nav_id=(\d+)`,
				},
				Stages: []Stage{
					{Name: "NavigationStarting", Expected: []string{"NavigationStarting"}, Required: true},
					{Name: "SourceChanged", Expected: []string{"SourceChanged"}},
					{Name: "ContentLoading", Expected: []string{"ContentLoading"}, Failures: []string{"ConnectionAborted"}},
					{Name: "HistoryChanged", Expected: []string{"HistoryChanged"}},
					{Name: "DOMContentLoaded", Expected: []string{"DOMContentLoaded"}},
					{
						Name:     "NavigationCompleted",
						Expected: []string{"NavigationCompleted"},
						Failures: []string{"NavigationFailed", "ProcessFailed"},
						Required: true,
					},
				},
				Boundaries: []BoundaryCheck{
					{Name: "navigation-completed-delivery", Producer: "NavigationCompleted", Consumer: "Invoke_NavigationCompletedHandler"},
					{Name: "web-message-delivery", Producer: "WebMessageReceived", Consumer: "Invoke_WebMessageReceivedHandler"},
					{Name: "process-failed-delivery", Producer: "ProcessFailed", Consumer: "Invoke_ProcessFailedHandler"},
				},
				ProcessFailureEvents: []string{"ProcessFailed", "BrowserProcessExited"},
				HangEvents:           []string{"RendererUnresponsive"},
				FlowStartEvent:       "NavigationStarting",
				FlowCompleteEvent:    "NavigationCompleted",
				DropEvents:           []string{"EventDroppedNoHandler"},
			},
		},
		Signatures: []Signature{
			{
				Key:         "nav-completed-missing",
				Label:       "NavigationCompleted not received",
				Category:    "navigation",
				Stage:       "NavigationCompleted",
				MustPresent: []string{"NavigationStarting"},
				MustAbsent:  []string{"NavigationCompleted"},
				MayPresent:  []string{"ContentLoading", "DOMContentLoaded"},
			},
			{
				Key:         "browser-process-crash",
				Label:       "Browser process exited unexpectedly",
				Category:    "process",
				Stage:       "Runtime",
				MustPresent: []string{"ProcessFailed"},
				MayPresent:  []string{"BrowserProcessExited", "crashpad"},
			},
			{
				Key:         "renderer-hang",
				Label:       "Renderer became unresponsive",
				Category:    "hang",
				Stage:       "Renderer",
				MustPresent: []string{"RendererUnresponsive"},
				MayPresent:  []string{"ProcessFailed"},
			},
			{
				Key:         "environment-creation-failure",
				Label:       "Environment creation failed",
				Category:    "startup",
				Stage:       "EnvironmentCreated",
				MustPresent: []string{"EnvironmentCreationFailed"},
				MayPresent:  []string{"HRESULT=0x"},
			},
			{
				Key:         "runtime-not-found",
				Label:       "WebView2 runtime not installed or not discoverable",
				Category:    "startup",
				Stage:       "EnvironmentCreated",
				MustPresent: []string{"RuntimeNotFound"},
				MustAbsent:  []string{"BrowserProcessStarted"},
			},
			{
				Key:         "events-dropped",
				Label:       "Events dropped: no handler registered",
				Category:    "delivery",
				Stage:       "NavigationCompleted",
				MustPresent: []string{"EventDroppedNoHandler"},
			},
			{
				Key:         "slow-navigation",
				Label:       "Navigation completed but exceeded timing budget",
				Category:    "performance",
				Stage:       "NavigationCompleted",
				MustPresent: []string{"NavigationStarting", "NavigationCompleted"},
				Timing: []TimingPair{
					{From: "NavigationStarting", To: "NavigationCompleted", ThresholdMs: 10000},
				},
			},
			{
				Key:         "gpu-instability",
				Label:       "GPU process instability degrading rendering",
				Category:    "process",
				Stage:       "Renderer",
				MustPresent: []string{"GpuProcessCrashed"},
				MayPresent:  []string{"GpuFallbackToSoftware"},
			},
		},
	}
}
