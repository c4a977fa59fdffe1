package cli

import (
	"fmt"

	"github.com/fatih/color"

	"github.com/diillson/cloud-snitch-map/pkg/version"
)

// displayWelcomeBanner exibe o banner de boas-vindas com informações de versão.
func displayWelcomeBanner(versionStr string) {
	banner := `
   _____ _                 _    _____       _ _       _     
  / ____| |               | |  / ____|     (_) |     | |    
 | |    | | ___  _   _  __| | | (___  _ __  _| |_ ___| |__  
 | |    | |/ _ \| | | |/ _' |  \___ \| '_ \| | __/ __| '_ \ 
 | |____| | (_) | |_| | (_| |  ____) | | | | | || (__| | | |
  \_____|_|\___/ \__,_|\__,_| |_____/|_| |_|_|\__\___|_| |_|
        `
	red := color.New(color.FgRed, color.Bold).SprintFunc()
	blue := color.New(color.FgBlue, color.Bold).SprintFunc()

	fmt.Println(red(banner))

	// Obtem a string formatada da versão através do pacote version
	formattedVersion := version.FormatVersion()
	fmt.Println(blue(fmt.Sprintf("Cloud Snitch Map CLI (v%s)", formattedVersion)))
}
