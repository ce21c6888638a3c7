package main

import (
	"context"
	"flag"
	"os"
	"path/filepath"
	"time"

	"github.com/kardianos/service"

	"github.com/RoanBrand/AlloyCalc/config"
	"github.com/RoanBrand/AlloyCalc/descriptor"
	"github.com/RoanBrand/AlloyCalc/element"
	"github.com/RoanBrand/AlloyCalc/http"
	"github.com/RoanBrand/AlloyCalc/log"
	"github.com/RoanBrand/AlloyCalc/spectro"
)

// spectrometer results are cached this long between requests
const resultCacheAge = 5 * time.Second

type app struct {
	conf   *config.Config
	server *http.Server
}

func (p *app) Start(s service.Service) error {
	execPath, err := os.Executable()
	if err != nil {
		return err
	}
	dir := filepath.Dir(execPath)

	conf, err := config.LoadConfig(filepath.Join(dir, "config.json"))
	if err != nil {
		return err
	}
	p.conf = conf

	logFile := conf.LogFile
	if !filepath.IsAbs(logFile) {
		logFile = filepath.Join(dir, logFile)
	}
	log.Setup(logFile, conf.DebugMode)

	ts, err := element.Open(conf.ElementTable, conf.EnthalpyTable, conf.PriceTable)
	if err != nil {
		return err
	}

	var opts []descriptor.Option
	if conf.LegacyEnthalpyGuard {
		opts = append(opts, descriptor.WithLegacyEnthalpyGuard())
	}
	engine := descriptor.NewEngineFromTables(ts, opts...)

	var results http.ResultGetter
	if conf.DataType != "" {
		results = spectro.NewSource(conf, engine, ts.Elements, resultCacheAge).Results
	}

	p.server = http.NewServer(engine, ts.Elements, results, conf.Workers)
	go p.run()
	return nil
}

func (p *app) run() {
	if err := p.server.StartServer(p.conf.HTTPServerPort); err != nil {
		log.Fatal(err)
	}
}

func (p *app) Stop(s service.Service) error {
	if p.server == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return p.server.Stop(ctx)
}

func main() {
	svcFlag := flag.String("service", "", "Control the system service.")
	flag.Parse()

	svcConfig := &service.Config{
		Name:        "AlloyCalc",
		DisplayName: "Alloy Descriptor Service",
		Description: "Computes empirical alloy descriptors over HTTP",
	}

	prg := &app{}
	s, err := service.New(prg, svcConfig)
	if err != nil {
		log.Fatal(err)
	}

	if *svcFlag != "" {
		err = service.Control(s, *svcFlag)
		if err != nil {
			log.Printf("Valid actions: %q\n", service.ControlAction)
			log.Fatal(err)
		}
		return
	}

	logger, err := s.Logger(nil)
	if err != nil {
		log.Fatal(err)
	}
	err = s.Run()
	if err != nil {
		logger.Error(err)
	}
}
